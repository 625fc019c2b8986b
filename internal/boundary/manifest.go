package boundary

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LayerSpec describes one boundary layer in the manifest file.
type LayerSpec struct {
	Name      string `yaml:"name"`      // layer name, e.g. "comuna"
	File      string `yaml:"file"`      // shapefile path relative to the data dir
	Attribute string `yaml:"attribute"` // DBF field holding the attribute value
	Field     string `yaml:"field"`     // output field key; defaults to name
	Sentinel  string `yaml:"sentinel"`  // no-match value; defaults to "Sin <name>"
}

// Manifest lists the boundary layers to load, in output order.
type Manifest struct {
	Layers []LayerSpec `yaml:"layers"`
}

// LoadManifest reads and validates a YAML layer manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: read manifest %s", path)
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest bytes, applying per-layer defaults.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "boundary: parse manifest")
	}
	if len(m.Layers) == 0 {
		return nil, eris.New("boundary: manifest defines no layers")
	}

	seen := make(map[string]bool, len(m.Layers))
	for i := range m.Layers {
		spec := &m.Layers[i]
		if spec.Name == "" {
			return nil, eris.Errorf("boundary: layer %d has no name", i)
		}
		if spec.File == "" {
			return nil, eris.Errorf("boundary: layer %q has no shapefile", spec.Name)
		}
		if spec.Attribute == "" {
			return nil, eris.Errorf("boundary: layer %q has no attribute field", spec.Name)
		}
		if spec.Field == "" {
			spec.Field = spec.Name
		}
		if spec.Sentinel == "" {
			spec.Sentinel = "Sin " + spec.Name
		}
		if seen[spec.Field] {
			return nil, eris.Errorf("boundary: duplicate output field %q", spec.Field)
		}
		seen[spec.Field] = true
	}
	return &m, nil
}
