// Package utm projects geographic WGS84 coordinates onto the Universal
// Transverse Mercator grid. The zone is derived from longitude and the
// hemisphere from latitude, matching the EPSG 326xx/327xx series.
package utm

import (
	"fmt"
	"math"
)

// WGS84 ellipsoid and UTM grid parameters.
const (
	semiMajor     = 6378137.0
	flattening    = 1.0 / 298.257223563
	scaleFactor   = 0.9996
	falseEasting  = 500000.0
	falseNorthing = 10000000.0 // applied in the southern hemisphere
)

// Krüger series coefficients, derived once from the third flattening.
var (
	n3    = flattening / (2 - flattening)
	meanA = semiMajor / (1 + n3) * (1 + n3*n3/4 + n3*n3*n3*n3/64)

	alpha = [3]float64{
		n3/2 - 2*n3*n3/3 + 5*n3*n3*n3/16,
		13*n3*n3/48 - 3*n3*n3*n3/5,
		61 * n3 * n3 * n3 / 240,
	}
	beta = [3]float64{
		n3/2 - 2*n3*n3/3 + 37*n3*n3*n3/96,
		n3*n3/48 + n3*n3*n3/15,
		17 * n3 * n3 * n3 / 480,
	}
	delta = [3]float64{
		2*n3 - 2*n3*n3/3 - 2*n3*n3*n3,
		7*n3*n3/3 - 8*n3*n3*n3/5,
		56 * n3 * n3 * n3 / 15,
	}
)

// ProjectedPoint is the planar image of a geographic coordinate pair.
type ProjectedPoint struct {
	Easting  float64
	Northing float64
	Zone     string
}

// Zone returns the UTM zone number for a longitude, in [1, 60].
func Zone(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// EPSG returns the EPSG code of the UTM CRS for a zone and hemisphere.
func EPSG(zone int, south bool) int {
	if south {
		return 32700 + zone
	}
	return 32600 + zone
}

// Project maps a lon/lat pair onto the UTM grid for its own zone and
// hemisphere. Latitude zero projects as northern hemisphere. Any finite
// input produces a result; NaN propagates.
func Project(lon, lat float64) ProjectedPoint {
	zone := Zone(lon)
	south := lat < 0

	easting, northing := forward(lon, lat, zone)
	if south {
		northing += falseNorthing
	}

	hemi := "N"
	if south {
		hemi = "S"
	}
	return ProjectedPoint{
		Easting:  easting,
		Northing: northing,
		Zone:     fmt.Sprintf("%d%s", zone, hemi),
	}
}

// Unproject inverts Project for a known zone and hemisphere. Used to verify
// the forward transform; accurate to well under 1e-6 degrees.
func Unproject(easting, northing float64, zone int, south bool) (lon, lat float64) {
	if south {
		northing -= falseNorthing
	}

	xi := northing / (scaleFactor * meanA)
	eta := (easting - falseEasting) / (scaleFactor * meanA)

	xiP, etaP := xi, eta
	for j := 1; j <= 3; j++ {
		xiP -= beta[j-1] * math.Sin(2*float64(j)*xi) * math.Cosh(2*float64(j)*eta)
		etaP -= beta[j-1] * math.Cos(2*float64(j)*xi) * math.Sinh(2*float64(j)*eta)
	}

	chi := math.Asin(math.Sin(xiP) / math.Cosh(etaP))
	phi := chi
	for j := 1; j <= 3; j++ {
		phi += delta[j-1] * math.Sin(2*float64(j)*chi)
	}

	lon0 := centralMeridian(zone)
	lon = lon0 + math.Atan2(math.Sinh(etaP), math.Cos(xiP))*180/math.Pi
	lat = phi * 180 / math.Pi
	return lon, lat
}

// forward is the Krüger-series transverse Mercator projection for one zone.
func forward(lon, lat float64, zone int) (easting, northing float64) {
	phi := lat * math.Pi / 180
	lam := (lon - centralMeridian(zone)) * math.Pi / 180

	sinPhi := math.Sin(phi)
	c := 2 * math.Sqrt(n3) / (1 + n3)
	t := math.Sinh(math.Atanh(sinPhi) - c*math.Atanh(c*sinPhi))

	xiP := math.Atan2(t, math.Cos(lam))
	etaP := math.Atanh(math.Sin(lam) / math.Sqrt(1+t*t))

	xi, eta := xiP, etaP
	for j := 1; j <= 3; j++ {
		xi += alpha[j-1] * math.Sin(2*float64(j)*xiP) * math.Cosh(2*float64(j)*etaP)
		eta += alpha[j-1] * math.Cos(2*float64(j)*xiP) * math.Sinh(2*float64(j)*etaP)
	}

	easting = falseEasting + scaleFactor*meanA*eta
	northing = scaleFactor * meanA * xi
	return easting, northing
}

// centralMeridian returns the zone's central meridian in degrees.
func centralMeridian(zone int) float64 {
	return float64(zone)*6 - 183
}
