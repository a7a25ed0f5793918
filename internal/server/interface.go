package server

import (
	"context"
	"net/http"
)

// Server exposes the batch queue and the history over HTTP.
type Server interface {
	// Run serves until ctx is cancelled, then shuts down gracefully.
	Run(ctx context.Context) error
	Handler() http.Handler
}
