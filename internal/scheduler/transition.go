package scheduler

import "github.com/nguyentantai21042004/sonote/internal/domain"

// isValidTransition enforces the allowed item state machine edges.
// Staying in the same status is always allowed (progress updates).
func isValidTransition(from, to domain.ProcessStatus) bool {
	if from == to {
		return true
	}

	switch from {
	case domain.StatusIdle:
		return to == domain.StatusQueued
	case domain.StatusQueued:
		return to == domain.StatusUploading || to == domain.StatusError
	case domain.StatusUploading:
		return to == domain.StatusTranscribing || to == domain.StatusError
	case domain.StatusTranscribing:
		return to == domain.StatusPolishing || to == domain.StatusError
	case domain.StatusPolishing:
		return to == domain.StatusCompleted || to == domain.StatusError
	case domain.StatusError:
		return to == domain.StatusQueued
	default:
		return false
	}
}

// isCancellable reports whether Cancel may move the status to ERROR.
func isCancellable(status domain.ProcessStatus) bool {
	return status == domain.StatusQueued || status.IsActive()
}
