package transcriber

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

type mockTranscriber struct {
	step time.Duration
}

// NewMock returns a Transcriber that simulates an upload in ten steps and
// answers with a canned transcript.
func NewMock(step time.Duration) Transcriber {
	return &mockTranscriber{step: step}
}

func (m *mockTranscriber) Transcribe(ctx context.Context, file domain.SourceFile, onProgress func(percent int)) (string, error) {
	for i := 0; i <= 100; i += 10 {
		if err := sleep(ctx, m.step); err != nil {
			return "", err
		}
		if onProgress != nil {
			onProgress(i)
		}
	}

	return fmt.Sprintf("This is the simulated transcript of %q. "+
		"It stands in for the raw, unpolished speech recognition output, "+
		"um, with the usual filler words, uh, still in place.", file.Name), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
