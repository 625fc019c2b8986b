package boundary

import (
	"path/filepath"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// NewLayer assembles a layer from ordered features and builds its spatial
// index. A layer with zero features is an error: serving it would turn every
// lookup into a sentinel, indistinguishable from genuine non-containment.
func NewLayer(name, field, sentinel string, features []Feature) (*Layer, error) {
	if len(features) == 0 {
		return nil, eris.Errorf("boundary: layer %q has no features", name)
	}

	index := rtreego.NewTree(2, 25, 50)
	for pos, f := range features {
		if f.Geometry == nil {
			return nil, eris.Errorf("boundary: layer %q feature %d has nil geometry", name, pos)
		}
		rect, err := boundsRect(f.Geometry.Bounds())
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: layer %q feature %d bounds", name, pos)
		}
		index.Insert(&indexEntry{rect: rect, pos: pos})
	}

	return &Layer{
		Name:     name,
		Field:    field,
		Sentinel: sentinel,
		features: features,
		index:    index,
	}, nil
}

// LoadLayer reads one shapefile into a Layer per its manifest spec. Every
// attribute value is diacritic-normalized. Polygons are converted to WGS84
// lon/lat multipolygons; a shapefile whose coordinates fall outside
// geographic range is rejected rather than silently mislocated.
func LoadLayer(dataDir string, spec LayerSpec) (*Layer, error) {
	path := spec.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, path)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	attrIdx := fieldIndex(reader, spec.Attribute)
	if attrIdx < 0 {
		return nil, eris.Errorf("boundary: layer %q: field %q not found in %s", spec.Name, spec.Attribute, path)
	}

	var features []Feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}
		if err := checkGeographic(mp.Bounds()); err != nil {
			return nil, eris.Wrapf(err, "boundary: layer %q", spec.Name)
		}

		attr := strings.TrimSpace(strings.TrimRight(reader.Attribute(attrIdx), "\x00"))
		features = append(features, Feature{
			Geometry:  mp,
			Attribute: Normalize(attr),
		})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped non-polygon shapefile records",
			zap.String("layer", spec.Name),
			zap.Int("skipped", skipped),
		)
	}

	layer, err := NewLayer(spec.Name, spec.Field, spec.Sentinel, features)
	if err != nil {
		return nil, err
	}

	zap.L().Info("boundary: layer loaded",
		zap.String("layer", spec.Name),
		zap.String("file", path),
		zap.Int("features", layer.Len()),
	)
	return layer, nil
}

// fieldIndex finds a DBF field by name, case-insensitively. DBF field names
// are NUL-padded to 11 bytes.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		fieldName := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(fieldName, name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon to a go-geom
// MultiPolygon, one single-ring polygon per part. Ring parity during the
// containment test handles holes, so parts need no outer/hole grouping.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// checkGeographic rejects geometry whose bounds are outside lon/lat range.
// Layers must already be in the canonical WGS84 frame.
func checkGeographic(b *geom.Bounds) error {
	if b.Min(0) < -180 || b.Max(0) > 180 || b.Min(1) < -90 || b.Max(1) > 90 {
		return eris.Errorf(
			"geometry bounds (%.2f %.2f, %.2f %.2f) are not geographic coordinates; dataset must be EPSG:4326",
			b.Min(0), b.Min(1), b.Max(0), b.Max(1),
		)
	}
	return nil
}

// boundsRect converts go-geom bounds to an R-tree rectangle. R-tree
// rectangles need strictly positive extents, so degenerate bounds are
// widened by a hair.
func boundsRect(b *geom.Bounds) (rtreego.Rect, error) {
	const minExtent = 1e-9
	w := b.Max(0) - b.Min(0)
	h := b.Max(1) - b.Min(1)
	if w < minExtent {
		w = minExtent
	}
	if h < minExtent {
		h = minExtent
	}
	return rtreego.NewRect(rtreego.Point{b.Min(0), b.Min(1)}, []float64{w, h})
}
