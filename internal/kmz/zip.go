package kmz

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// extractArchive unpacks every entry of a ZIP archive into destDir. Input
// that is not a ZIP archive is a bad-input error, not an internal one.
func extractArchive(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(ErrParse, "kmz: input is not a ZIP archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

// extractEntry writes a single zip.File under destDir, refusing paths that
// escape it.
func extractEntry(f *zip.File, destDir string) error {
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return eris.Wrapf(ErrParse, "kmz: illegal archive path %q", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return eris.Wrap(err, "kmz: create directory")
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return eris.Wrap(err, "kmz: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return eris.Wrap(err, "kmz: open archive entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrap(err, "kmz: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrap(err, "kmz: write file")
	}
	return nil
}
