package boundary

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Store holds every configured boundary layer in manifest order. It is built
// once at startup and never mutated afterwards; any layer failing to load
// aborts construction so the process never serves with partial data.
type Store struct {
	layers []*Layer
}

// Load reads every layer named by the manifest. The first failure aborts the
// whole load.
func Load(dataDir string, m *Manifest) (*Store, error) {
	start := time.Now()

	layers := make([]*Layer, 0, len(m.Layers))
	for _, spec := range m.Layers {
		layer, err := LoadLayer(dataDir, spec)
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: load layer %q", spec.Name)
		}
		layers = append(layers, layer)
	}

	zap.L().Info("boundary: store ready",
		zap.Int("layers", len(layers)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Store{layers: layers}, nil
}

// NewStore wraps pre-built layers, keeping their order. Used by tests and by
// callers that assemble layers without shapefiles.
func NewStore(layers ...*Layer) *Store {
	return &Store{layers: layers}
}

// Layers returns the layers in configured order.
func (s *Store) Layers() []*Layer {
	return s.layers
}

// Layer returns the named layer, if configured.
func (s *Store) Layer(name string) (*Layer, bool) {
	for _, l := range s.layers {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Len returns the number of configured layers.
func (s *Store) Len() int {
	return len(s.layers)
}
