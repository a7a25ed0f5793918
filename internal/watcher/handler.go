package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/intake"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

// Enqueuer accepts validated files into the batch.
type Enqueuer interface {
	Enqueue(files []domain.SourceFile) ([]domain.Item, error)
}

// EnqueueHandler inspects and validates a detected file, then enqueues it.
func EnqueueHandler(q Enqueuer, v *intake.Validator, log logger.Logger) EventHandler {
	return func(ctx context.Context, path string) error {
		file, err := intake.Inspect(path)
		if err != nil {
			return err
		}
		if err := v.Validate(file); err != nil {
			return err
		}

		items, err := q.Enqueue([]domain.SourceFile{file})
		if err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
		for _, it := range items {
			log.Info(ctx, "Queued %s as %s", file.Name, it.ID)
		}
		return nil
	}
}

// Once wraps handler so a file version (path, size and modification time)
// is handled successfully at most once. The startup scan and the live
// watcher share it, so a file that appears while both run is queued once.
func Once(handler EventHandler) EventHandler {
	var (
		mu   sync.Mutex
		done = make(map[string]bool)
	)
	return func(ctx context.Context, path string) error {
		info, err := os.Stat(path)
		if err != nil {
			return handler(ctx, path)
		}
		key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())

		mu.Lock()
		if done[key] {
			mu.Unlock()
			return nil
		}
		done[key] = true
		mu.Unlock()

		if err := handler(ctx, path); err != nil {
			mu.Lock()
			delete(done, key)
			mu.Unlock()
			return err
		}
		return nil
	}
}

// ScanExisting hands media files already present in dir to handler, in
// name order. Errors for single files are logged, not returned.
func ScanExisting(ctx context.Context, dir string, handler EventHandler, log logger.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read input dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !intake.IsMedia(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	handled := 0
	for _, p := range paths {
		if err := handler(ctx, p); err != nil {
			log.Error(ctx, "Failed to enqueue %s: %v", p, err)
			continue
		}
		handled++
	}
	return handled, nil
}
