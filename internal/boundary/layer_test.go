package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// square builds a single-ring multipolygon covering [minX,maxX]×[minY,maxY].
func square(t *testing.T, minX, minY, maxX, maxY float64) *geom.MultiPolygon {
	t.Helper()
	return ringsToMultiPolygon(t, [][]float64{{
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY,
	}})
}

func ringsToMultiPolygon(t *testing.T, rings [][]float64) *geom.MultiPolygon {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	poly := geom.NewPolygon(geom.XY)
	for _, flat := range rings {
		require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, flat)))
	}
	require.NoError(t, mp.Push(poly))
	return mp
}

func TestNewLayer_RejectsEmpty(t *testing.T) {
	_, err := NewLayer("comuna", "comuna", "Sin comuna", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no features")
}

func TestLayer_Locate(t *testing.T) {
	layer, err := NewLayer("comuna", "comuna", "Sin comuna", []Feature{
		{Geometry: square(t, -71, -34, -70, -33), Attribute: "Santiago"},
		{Geometry: square(t, -73, -42, -72, -41), Attribute: "Puerto Montt"},
	})
	require.NoError(t, err)

	attr, ok := layer.Locate(-70.65, -33.45)
	require.True(t, ok)
	assert.Equal(t, "Santiago", attr)

	attr, ok = layer.Locate(-72.5, -41.5)
	require.True(t, ok)
	assert.Equal(t, "Puerto Montt", attr)

	_, ok = layer.Locate(0, 0)
	assert.False(t, ok)
}

func TestLayer_Resolve_Sentinel(t *testing.T) {
	layer, err := NewLayer("localidad", "localidad", "Sin localidad", []Feature{
		{Geometry: square(t, -71, -34, -70, -33), Attribute: "Nunoa"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Nunoa", layer.Resolve(-70.5, -33.5))
	assert.Equal(t, "Sin localidad", layer.Resolve(10, 10))
}

func TestLayer_OverlappingPolygons_FirstMatchWins(t *testing.T) {
	// Both features contain the point; load order decides.
	layer, err := NewLayer("region", "region", "Sin region", []Feature{
		{Geometry: square(t, -71, -34, -70, -33), Attribute: "First"},
		{Geometry: square(t, -71, -34, -70, -33), Attribute: "Second"},
	})
	require.NoError(t, err)

	attr, ok := layer.Locate(-70.5, -33.5)
	require.True(t, ok)
	assert.Equal(t, "First", attr)
}

func TestLayer_HoleExcluded(t *testing.T) {
	// Outer ring with an interior hole; parity excludes the hole.
	withHole := ringsToMultiPolygon(t, [][]float64{
		{0, 0, 10, 0, 10, 10, 0, 10, 0, 0},
		{4, 4, 6, 4, 6, 6, 4, 6, 4, 4},
	})
	layer, err := NewLayer("provincia", "provincia", "Sin provincia", []Feature{
		{Geometry: withHole, Attribute: "Anillo"},
	})
	require.NoError(t, err)

	_, ok := layer.Locate(5, 5)
	assert.False(t, ok, "point inside the hole must not match")

	attr, ok := layer.Locate(2, 2)
	require.True(t, ok)
	assert.Equal(t, "Anillo", attr)
}

func TestLayer_ExactlyOneValuePerPoint(t *testing.T) {
	layer, err := NewLayer("comuna", "comuna", "Sin comuna", []Feature{
		{Geometry: square(t, -71, -34, -70, -33), Attribute: "Santiago"},
		{Geometry: square(t, -71, -34, -70, -33), Attribute: "Duplicada"},
	})
	require.NoError(t, err)

	// Whether or not a polygon matches, Resolve yields a single value.
	for _, pt := range [][2]float64{{-70.5, -33.5}, {50, 50}} {
		v := layer.Resolve(pt[0], pt[1])
		assert.NotEmpty(t, v)
	}
}

func TestStore_OrderAndLookup(t *testing.T) {
	region, err := NewLayer("region", "region", "Sin region", []Feature{
		{Geometry: square(t, -75, -56, -66, -17), Attribute: "Metropolitana"},
	})
	require.NoError(t, err)
	comuna, err := NewLayer("comuna", "comuna", "Sin comuna", []Feature{
		{Geometry: square(t, -71, -34, -70, -33), Attribute: "Nunoa"},
	})
	require.NoError(t, err)

	store := NewStore(region, comuna)
	require.Equal(t, 2, store.Len())
	assert.Equal(t, "region", store.Layers()[0].Name)
	assert.Equal(t, "comuna", store.Layers()[1].Name)

	got, ok := store.Layer("comuna")
	require.True(t, ok)
	assert.Equal(t, comuna, got)

	_, ok = store.Layer("pais")
	assert.False(t, ok)
}
