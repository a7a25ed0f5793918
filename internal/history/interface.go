package history

import (
	"context"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// Store persists snapshots of completed items, newest first.
type Store interface {
	// Record appends rec. A second record for the same item id is ignored.
	Record(ctx context.Context, rec domain.HistoryRecord) error
	List(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
	Get(ctx context.Context, id string) (domain.HistoryRecord, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Close() error
}
