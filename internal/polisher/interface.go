package polisher

import (
	"context"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// Polisher cleans up a raw transcript and derives a summary and keywords.
type Polisher interface {
	Polish(ctx context.Context, transcript string) (domain.Refined, error)
}
