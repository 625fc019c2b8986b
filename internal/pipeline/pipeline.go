// Package pipeline sequences archive extraction, UTM projection and boundary
// enrichment into the final record list: one record per extracted placemark.
package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hugo98-py/KMZtoJSON/internal/boundary"
	"github.com/hugo98-py/KMZtoJSON/internal/kmz"
	"github.com/hugo98-py/KMZtoJSON/internal/model"
	"github.com/hugo98-py/KMZtoJSON/internal/utm"
)

// Pipeline runs the KMZ → enriched record transformation against a shared,
// read-only boundary store. Safe for concurrent use.
type Pipeline struct {
	layers  *boundary.Store
	workers int
}

// Option tunes pipeline construction.
type Option func(*Pipeline)

// WithWorkers bounds per-request enrichment parallelism. Values below one
// fall back to the CPU count.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// New creates a Pipeline over an already-loaded boundary store.
func New(layers *boundary.Store, opts ...Option) *Pipeline {
	p := &Pipeline{layers: layers}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = runtime.NumCPU()
	}
	return p
}

// Run processes one archive: every placemark is projected and enriched, the
// output preserving extraction order. Any failure aborts the whole run with
// no partial output.
func (p *Pipeline) Run(ctx context.Context, archive []byte) ([]model.Record, error) {
	start := time.Now()

	points, err := kmz.Extract(ctx, archive)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract archive")
	}

	// Enrichment is CPU-bound and per-point independent; records are written
	// by index so order survives the parallelism.
	records := make([]model.Record, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, pt := range points {
		i, pt := i, pt
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "pipeline: enrich cancelled")
			}
			records[i] = p.assemble(pt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("pipeline: archive processed",
		zap.Int("points", len(records)),
		zap.Int("layers", p.layers.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return records, nil
}

// assemble builds the enriched record for one placemark: projection plus one
// attribute (match or sentinel) per configured layer, in layer order.
func (p *Pipeline) assemble(pt model.Placemark) model.Record {
	proj := utm.Project(pt.Lon, pt.Lat)

	layers := make([]model.LayerValue, 0, p.layers.Len())
	for _, l := range p.layers.Layers() {
		layers = append(layers, model.LayerValue{
			Key:   l.Field,
			Value: l.Resolve(pt.Lon, pt.Lat),
		})
	}

	return model.Record{
		Name:        pt.Name,
		Lon:         pt.Lon,
		Lat:         pt.Lat,
		Easting:     proj.Easting,
		Northing:    proj.Northing,
		Zone:        proj.Zone,
		Layers:      layers,
		Responsible: "",
	}
}
