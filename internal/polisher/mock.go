package polisher

import (
	"context"
	"strings"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

type mockPolisher struct {
	delay time.Duration
}

// NewMock returns a Polisher that answers with a canned refinement after delay.
func NewMock(delay time.Duration) Polisher {
	return &mockPolisher{delay: delay}
}

func (m *mockPolisher) Polish(ctx context.Context, transcript string) (domain.Refined, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domain.Refined{}, ctx.Err()
		}
	}

	polished := strings.Join(strings.Fields(removeFillers(transcript)), " ")
	return domain.Refined{
		PolishedText: polished,
		Summary:      "Simulated summary of the polished transcript.",
		Keywords:     []string{"mock", "transcript", "summary"},
	}, nil
}

func removeFillers(s string) string {
	r := strings.NewReplacer(" um,", "", " uh,", "", " um", "", " uh", "")
	return r.Replace(s)
}
