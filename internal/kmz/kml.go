package kmz

import (
	"context"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/hugo98-py/KMZtoJSON/internal/model"
)

// kmlPlacemark is the subset of a KML <Placemark> this service consumes.
// Only point geometry is supported; anything else fails the parse.
type kmlPlacemark struct {
	Name  string    `xml:"name"`
	Point *kmlPoint `xml:"Point"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

// ParsePlacemarks streams a KML document and decodes every <Placemark>
// element, wherever it is nested, in document order.
func ParsePlacemarks(ctx context.Context, r io.Reader) ([]model.Placemark, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "kmz: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var points []model.Placemark
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "kmz: parse cancelled")
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			return points, nil
		}
		if err != nil {
			return nil, eris.Wrapf(ErrParse, "kmz: read KML token: %v", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}

		var pm kmlPlacemark
		if err := decoder.DecodeElement(&pm, &se); err != nil {
			return nil, eris.Wrapf(ErrParse, "kmz: decode placemark: %v", err)
		}

		point, err := placemarkPoint(pm)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
}

// placemarkPoint validates one placemark and parses its coordinate pair.
func placemarkPoint(pm kmlPlacemark) (model.Placemark, error) {
	if pm.Point == nil {
		return model.Placemark{}, eris.Wrapf(ErrParse, "kmz: placemark %q has no point geometry", pm.Name)
	}

	lon, lat, err := parseCoordinates(pm.Point.Coordinates)
	if err != nil {
		return model.Placemark{}, eris.Wrapf(ErrParse, "kmz: placemark %q: %v", pm.Name, err)
	}

	return model.Placemark{
		Name: strings.TrimSpace(pm.Name),
		Lon:  lon,
		Lat:  lat,
	}, nil
}

// parseCoordinates parses a KML coordinate string: exactly one
// "lon,lat[,alt]" tuple.
func parseCoordinates(raw string) (lon, lat float64, err error) {
	tuples := strings.Fields(strings.TrimSpace(raw))
	if len(tuples) != 1 {
		return 0, 0, eris.Errorf("expected a single coordinate tuple, got %d", len(tuples))
	}

	parts := strings.Split(tuples[0], ",")
	if len(parts) < 2 {
		return 0, 0, eris.Errorf("coordinate tuple %q has no latitude", tuples[0])
	}

	lon, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, eris.Errorf("bad longitude %q", parts[0])
	}
	lat, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, eris.Errorf("bad latitude %q", parts[1])
	}
	return lon, lat, nil
}
