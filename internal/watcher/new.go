package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

// DefaultSettleDelay gives writers time to finish a file before it is read.
const DefaultSettleDelay = 500 * time.Millisecond

// New creates a Watcher on inputDir. A zero settle delay uses DefaultSettleDelay.
func New(inputDir string, settle time.Duration, handler EventHandler, log logger.Logger) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if settle <= 0 {
		settle = DefaultSettleDelay
	}

	return &implWatcher{
		inputDir: inputDir,
		settle:   settle,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		pending:  make(map[string]bool),
	}, nil
}
