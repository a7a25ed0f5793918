package scheduler

import (
	"testing"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from, to domain.ProcessStatus
		want     bool
	}{
		{domain.StatusIdle, domain.StatusQueued, true},
		{domain.StatusQueued, domain.StatusUploading, true},
		{domain.StatusQueued, domain.StatusError, true},
		{domain.StatusQueued, domain.StatusCompleted, false},
		{domain.StatusUploading, domain.StatusTranscribing, true},
		{domain.StatusUploading, domain.StatusPolishing, false},
		{domain.StatusTranscribing, domain.StatusPolishing, true},
		{domain.StatusPolishing, domain.StatusCompleted, true},
		{domain.StatusPolishing, domain.StatusQueued, false},
		{domain.StatusError, domain.StatusQueued, true},
		{domain.StatusError, domain.StatusUploading, false},
		{domain.StatusCompleted, domain.StatusQueued, false},
		{domain.StatusCompleted, domain.StatusError, false},
		{domain.StatusUploading, domain.StatusUploading, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := isValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("isValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsCancellable(t *testing.T) {
	for _, st := range []domain.ProcessStatus{domain.StatusQueued, domain.StatusUploading, domain.StatusTranscribing, domain.StatusPolishing} {
		if !isCancellable(st) {
			t.Errorf("%s should be cancellable", st)
		}
	}
	for _, st := range []domain.ProcessStatus{domain.StatusIdle, domain.StatusCompleted, domain.StatusError} {
		if isCancellable(st) {
			t.Errorf("%s should not be cancellable", st)
		}
	}
}
