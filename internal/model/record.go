package model

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Placemark is a named point feature extracted from a KML document.
// Coordinates are geographic degrees, longitude first.
type Placemark struct {
	Name string
	Lon  float64
	Lat  float64
}

// LayerValue is the attribute resolved for one boundary layer. Key is the
// output field name; Value is the normalized attribute or the layer's
// sentinel.
type LayerValue struct {
	Key   string
	Value string
}

// Record is the final output unit: one per extracted placemark.
type Record struct {
	Name        string
	Lon         float64
	Lat         float64
	Easting     float64
	Northing    float64
	Zone        string
	Layers      []LayerValue
	Responsible string
}

// MarshalJSON emits fields in the fixed output order:
// Name, lon, lat, xx, yy, UTM_zone, <layer fields>, responsible.
// Layer field names are configuration-driven, so the object is built by hand.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	fields := []struct {
		key   string
		value any
	}{
		{"Name", r.Name},
		{"lon", r.Lon},
		{"lat", r.Lat},
		{"xx", r.Easting},
		{"yy", r.Northing},
		{"UTM_zone", r.Zone},
	}
	for _, f := range fields {
		if err := writeField(f.key, f.value); err != nil {
			return nil, eris.Wrapf(err, "model: marshal field %s", f.key)
		}
	}
	for _, lv := range r.Layers {
		if err := writeField(lv.Key, lv.Value); err != nil {
			return nil, eris.Wrapf(err, "model: marshal layer field %s", lv.Key)
		}
	}
	if err := writeField("responsible", r.Responsible); err != nil {
		return nil, eris.Wrap(err, "model: marshal field responsible")
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Layer returns the value for the named layer field, if present.
func (r Record) Layer(key string) (string, bool) {
	for _, lv := range r.Layers {
		if lv.Key == key {
			return lv.Value, true
		}
	}
	return "", false
}
