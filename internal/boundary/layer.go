// Package boundary loads administrative boundary layers from shapefiles and
// resolves which polygon contains a given geographic point. Layers are built
// once at startup and are read-only afterwards, so lookups are safe from
// concurrent requests.
package boundary

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/twpayne/go-geom"
)

// pointQueryTol is the side length of the degenerate query rectangle used
// for point lookups against the R-tree.
const pointQueryTol = 1e-9

// Feature pairs one polygon geometry with its normalized attribute value.
type Feature struct {
	Geometry  *geom.MultiPolygon
	Attribute string
}

// indexEntry maps an R-tree leaf back to its feature's position in the
// layer, so candidate order can be restored before the containment test.
type indexEntry struct {
	rect rtreego.Rect
	pos  int
}

func (e *indexEntry) Bounds() rtreego.Rect {
	return e.rect
}

// Layer is one named administrative level: an ordered feature list plus a
// spatial index over feature bounding boxes.
type Layer struct {
	Name     string
	Field    string // output field key on enriched records
	Sentinel string // value assigned when no polygon contains the point

	features []Feature
	index    *rtreego.Rtree
}

// Len returns the number of features in the layer.
func (l *Layer) Len() int {
	return len(l.features)
}

// Features returns the layer's features in load order.
func (l *Layer) Features() []Feature {
	return l.features
}

// Locate returns the attribute of the polygon containing the point. When
// several polygons contain it (overlapping boundary data), the first match
// in layer load order wins, so results are deterministic.
func (l *Layer) Locate(lon, lat float64) (string, bool) {
	if l.index == nil {
		return "", false
	}

	hits := l.index.SearchIntersect(rtreego.Point{lon, lat}.ToRect(pointQueryTol))
	if len(hits) == 0 {
		return "", false
	}

	// The R-tree returns candidates in arbitrary order; restore load order
	// before the exact test.
	positions := make([]int, 0, len(hits))
	for _, h := range hits {
		positions = append(positions, h.(*indexEntry).pos)
	}
	sort.Ints(positions)

	for _, pos := range positions {
		if contains(l.features[pos].Geometry, lon, lat) {
			return l.features[pos].Attribute, true
		}
	}
	return "", false
}

// Resolve returns the containing polygon's attribute, or the layer sentinel
// when no polygon contains the point. Exactly one value per call.
func (l *Layer) Resolve(lon, lat float64) string {
	if attr, ok := l.Locate(lon, lat); ok {
		return attr
	}
	return l.Sentinel
}

// contains is an even-odd (ray casting) containment test over every ring of
// the multipolygon. Hole rings flip parity, so interior holes are excluded.
func contains(mp *geom.MultiPolygon, lon, lat float64) bool {
	if mp == nil {
		return false
	}
	inside := false
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for r := 0; r < poly.NumLinearRings(); r++ {
			ring := poly.LinearRing(r)
			if ringCrossings(ring.FlatCoords(), ring.Stride(), lon, lat) {
				inside = !inside
			}
		}
	}
	return inside
}

// ringCrossings reports whether a ray cast east from (x, y) crosses the ring
// an odd number of times.
func ringCrossings(flat []float64, stride int, x, y float64) bool {
	if stride < 2 {
		return false
	}
	n := len(flat) / stride
	odd := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := flat[i*stride], flat[i*stride+1]
		xj, yj := flat[j*stride], flat[j*stride+1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			odd = !odd
		}
	}
	return odd
}
