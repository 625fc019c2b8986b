package utm

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZone_Edges(t *testing.T) {
	assert.Equal(t, 1, Zone(-180))
	assert.Equal(t, 1, Zone(-174.0001))
	assert.Equal(t, 2, Zone(-174))
	assert.Equal(t, 31, Zone(0))
	assert.Equal(t, 60, Zone(179.9999))
	assert.Equal(t, 60, Zone(180)) // clamped to the valid range
}

func TestZone_Formula(t *testing.T) {
	for lon := -180.0; lon < 180.0; lon += 1.5 {
		want := int(math.Floor((lon+180)/6)) + 1
		got := Zone(lon)
		assert.Equal(t, want, got, "lon=%v", lon)
		assert.GreaterOrEqual(t, got, 1)
		assert.LessOrEqual(t, got, 60)
	}
}

func TestEPSG(t *testing.T) {
	assert.Equal(t, 32619, EPSG(19, false))
	assert.Equal(t, 32719, EPSG(19, true))
}

func TestProject_HemisphereLabel(t *testing.T) {
	assert.Equal(t, "19S", Project(-70.65, -33.45).Zone)
	assert.Equal(t, "31N", Project(2.35, 48.85).Zone)
	// Latitude zero is northern hemisphere.
	assert.Equal(t, "31N", Project(0, 0).Zone)
}

func TestProject_CentralMeridian(t *testing.T) {
	// On the central meridian the easting is exactly the false easting and
	// the equator projects to northing zero.
	p := Project(-69, 0) // zone 19 central meridian
	assert.Equal(t, "19N", p.Zone)
	assert.InDelta(t, 500000, p.Easting, 1e-6)
	assert.InDelta(t, 0, p.Northing, 1e-6)

	p = Project(-69, 45)
	assert.InDelta(t, 500000, p.Easting, 1e-6)
	assert.Greater(t, p.Northing, 0.0)
}

func TestProject_Santiago(t *testing.T) {
	p := Project(-70.65, -33.45)
	require.Equal(t, "19S", p.Zone)

	// Southern-hemisphere northing carries the 10,000,000 m false northing.
	assert.Greater(t, p.Easting, 300000.0)
	assert.Less(t, p.Easting, 400000.0)
	assert.Greater(t, p.Northing, 6.2e6)
	assert.Less(t, p.Northing, 6.35e6)
}

func TestProject_SouthFalseNorthing(t *testing.T) {
	north := Project(-70.65, 33.45)
	south := Project(-70.65, -33.45)
	// Same meridian distance from the equator, mirrored.
	assert.InDelta(t, north.Northing, falseNorthing-south.Northing, 1e-3)
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		lon, lat float64
	}{
		{-70.65, -33.45}, // Santiago
		{-72.94, -41.47}, // Puerto Montt
		{-70.4, -23.65},  // Antofagasta
		{2.35, 48.85},    // Paris
		{-0.1, 51.5},     // London, zone boundary side
		{151.21, -33.87}, // Sydney
		{-69.0, 0.0},     // zone 19 origin
		{-66.001, 9.9},   // eastern zone edge
	}
	for i, tc := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			zone := Zone(tc.lon)
			south := tc.lat < 0
			p := Project(tc.lon, tc.lat)

			lon, lat := Unproject(p.Easting, p.Northing, zone, south)
			assert.InDelta(t, tc.lon, lon, 1e-6)
			assert.InDelta(t, tc.lat, lat, 1e-6)
		})
	}
}

func TestProject_NaNPropagates(t *testing.T) {
	p := Project(math.NaN(), 10)
	assert.True(t, math.IsNaN(p.Easting))
}
