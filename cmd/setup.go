package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hugo98-py/KMZtoJSON/internal/boundary"
	"github.com/hugo98-py/KMZtoJSON/internal/pipeline"
	"github.com/hugo98-py/KMZtoJSON/internal/store"
)

// initLayers loads the manifest and every boundary dataset it names. A layer
// that fails to load is fatal: serving with partial layers would silently
// produce wrong enrichment.
func initLayers() (*boundary.Store, error) {
	start := time.Now()

	manifest, err := boundary.LoadManifest(cfg.Boundary.Manifest)
	if err != nil {
		return nil, err
	}

	layers, err := boundary.Load(cfg.Boundary.DataDir, manifest)
	if err != nil {
		return nil, err
	}

	zap.L().Info("boundary layers loaded",
		zap.Int("layers", layers.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return layers, nil
}

func initPipeline() (*pipeline.Pipeline, *boundary.Store, error) {
	layers, err := initLayers()
	if err != nil {
		return nil, nil, err
	}
	return pipeline.New(layers, pipeline.WithWorkers(cfg.Pipeline.Workers)), layers, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
