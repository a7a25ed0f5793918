package watcher

import "context"

// Watcher monitors the input folder for new media files.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once per new media file, after the settle delay.
type EventHandler func(ctx context.Context, filePath string) error
