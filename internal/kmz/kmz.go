// Package kmz unpacks KMZ archives and extracts point placemarks from the
// KML documents inside. Extraction uses a request-scoped scratch directory
// that is always released, and never returns partial results.
package kmz

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hugo98-py/KMZtoJSON/internal/model"
)

var (
	// ErrNoKML marks an archive with no embedded KML document.
	ErrNoKML = eris.New("kmz: archive contains no KML document")
	// ErrParse marks input that cannot be parsed into point placemarks.
	ErrParse = eris.New("kmz: malformed input")
)

// IsBadInput reports whether the error is the caller's fault (unusable
// archive or document) rather than an internal failure.
func IsBadInput(err error) bool {
	return eris.Is(err, ErrNoKML) || eris.Is(err, ErrParse)
}

// Extract unpacks a KMZ archive and returns every point placemark from every
// embedded KML document: documents in discovery order, placemark order
// preserved within each document.
func Extract(ctx context.Context, archive []byte) ([]model.Placemark, error) {
	scratch, err := os.MkdirTemp("", "kmz-*")
	if err != nil {
		return nil, eris.Wrap(err, "kmz: create scratch dir")
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			zap.L().Warn("kmz: scratch dir cleanup failed", zap.String("dir", scratch), zap.Error(rmErr))
		}
	}()

	archivePath := filepath.Join(scratch, "upload.kmz")
	if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
		return nil, eris.Wrap(err, "kmz: write archive")
	}

	extractDir := filepath.Join(scratch, "contents")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "kmz: create extract dir")
	}
	if err := extractArchive(archivePath, extractDir); err != nil {
		return nil, err
	}

	docs, err := findKMLDocuments(extractDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, eris.Wrap(ErrNoKML, "kmz: extract")
	}

	var points []model.Placemark
	for _, doc := range docs {
		f, err := os.Open(doc)
		if err != nil {
			return nil, eris.Wrapf(err, "kmz: open document %s", filepath.Base(doc))
		}
		docPoints, parseErr := ParsePlacemarks(ctx, f)
		_ = f.Close()
		if parseErr != nil {
			return nil, eris.Wrapf(parseErr, "kmz: document %s", filepath.Base(doc))
		}
		points = append(points, docPoints...)
	}

	zap.L().Debug("kmz: extracted placemarks",
		zap.Int("documents", len(docs)),
		zap.Int("points", len(points)),
	)
	return points, nil
}

// findKMLDocuments walks the extracted tree and returns .kml files
// (case-insensitive extension) in lexical walk order.
func findKMLDocuments(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".kml") {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "kmz: locate KML documents")
	}
	sort.Strings(docs)
	return docs, nil
}
