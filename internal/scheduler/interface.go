package scheduler

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// Scheduler owns the batch collection and advances queued items through
// the transcribe -> polish pipeline under a concurrency cap.
type Scheduler interface {
	Enqueue(files []domain.SourceFile) ([]domain.Item, error)
	Retry(id string) error
	Cancel(id string) error
	Remove(id string) error

	Get(id string) (domain.Item, bool)
	Items() []domain.Item
	Stats() domain.Stats
	Events(since int64) []Event

	// Wait blocks until no item is queued and no pipeline run is live.
	Wait(ctx context.Context) error
	Close()
}

// Transcriber is the remote speech-to-text stage.
type Transcriber interface {
	Transcribe(ctx context.Context, file domain.SourceFile, onProgress func(percent int)) (string, error)
}

// Polisher is the remote polishing/summarization stage.
type Polisher interface {
	Polish(ctx context.Context, transcript string) (domain.Refined, error)
}

// Recorder receives one snapshot per completed item.
type Recorder interface {
	Record(ctx context.Context, rec domain.HistoryRecord) error
}

// Metrics observes scheduler activity.
type Metrics interface {
	ItemsEnqueued(n int)
	RunStarted()
	RunFinished()
	StageDuration(stage string, d time.Duration)
	ItemCompleted(sizeBytes int64)
	ItemFailed(stage string)
}

// Janitor is told when an item's source file is no longer needed: after the
// item completes or is removed. It decides which files it may delete.
type Janitor interface {
	Release(ctx context.Context, file domain.SourceFile)
}

// Deps groups the collaborators the scheduler calls. Recorder, Metrics and
// Janitor are optional.
type Deps struct {
	Transcriber Transcriber
	Polisher    Polisher
	Recorder    Recorder
	Metrics     Metrics
	Janitor     Janitor
}
