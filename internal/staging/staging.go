// Package staging owns the upload area: files saved by the HTTP server
// before they are enqueued, removed once their item no longer needs them.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

// Area is a directory of staged uploads.
type Area struct {
	dir    string
	logger logger.Logger
}

// New creates the staging directory if needed.
func New(dir string, log logger.Logger) (*Area, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve staging dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Area{dir: abs, logger: log}, nil
}

// Dir returns the absolute staging directory.
func (a *Area) Dir() string {
	return a.dir
}

// Path returns a fresh, collision-free path for an upload named name.
func (a *Area) Path(name string) string {
	return filepath.Join(a.dir, uuid.NewString()+"_"+filepath.Base(name))
}

// Owns reports whether path is a file directly inside the staging directory.
// Files outside it belong to the user and are never removed.
func (a *Area) Owns(path string) bool {
	if path == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == a.dir
}

// Release removes a staged file, logs warning if it fails
func (a *Area) Release(ctx context.Context, file domain.SourceFile) {
	if !a.Owns(file.Path) {
		return
	}

	if err := os.Remove(file.Path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn(ctx, "Failed to cleanup staged file %s: %v", file.Path, err)
		}
		return
	}
	a.logger.Debug(ctx, "Cleaned up staged file: %s", file.Path)
}
