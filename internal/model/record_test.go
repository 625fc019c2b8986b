package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarshalJSON_FieldOrder(t *testing.T) {
	r := Record{
		Name:     "Punto 1",
		Lon:      -70.65,
		Lat:      -33.45,
		Easting:  346716.5,
		Northing: 6297507.2,
		Zone:     "19S",
		Layers: []LayerValue{
			{Key: "region", Value: "Metropolitana de Santiago"},
			{Key: "comuna", Value: "Nunoa"},
			{Key: "localidad", Value: "Sin localidad"},
		},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	// Keys appear in the fixed output order.
	s := string(data)
	order := []string{`"Name"`, `"lon"`, `"lat"`, `"xx"`, `"yy"`, `"UTM_zone"`, `"region"`, `"comuna"`, `"localidad"`, `"responsible"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", key)
		assert.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}

	// And the document round-trips as a plain object.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Punto 1", decoded["Name"])
	assert.Equal(t, "19S", decoded["UTM_zone"])
	assert.Equal(t, "Nunoa", decoded["comuna"])
	assert.Equal(t, "", decoded["responsible"])
}

func TestRecord_Layer(t *testing.T) {
	r := Record{Layers: []LayerValue{{Key: "comuna", Value: "Providencia"}}}

	v, ok := r.Layer("comuna")
	require.True(t, ok)
	assert.Equal(t, "Providencia", v)

	_, ok = r.Layer("region")
	assert.False(t, ok)
}
