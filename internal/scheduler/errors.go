package scheduler

import "errors"

// CancelledMessage is stored on items cancelled by the user.
const CancelledMessage = "Processing cancelled by user"

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrNotRetryable      = errors.New("item is not in error state")
	ErrNotCancellable    = errors.New("item is not in a cancellable state")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrClosed            = errors.New("scheduler closed")

	// errStaleRun marks results from a superseded pipeline run.
	errStaleRun = errors.New("stale run")
	errNoChange = errors.New("no change")
)
