package scheduler

import (
	"context"
	"runtime"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

const (
	stageTranscribe = "transcribe"
	stagePolish     = "polish"
	stageRecord     = "record"

	defaultFailureMessage = "Failed to process"
)

// run drives one admitted item through transcribe -> polish -> completed.
// Every write carries the run epoch, so a cancelled, retried or removed
// item silently drops this run's results.
func (s *implScheduler) run(ctx context.Context, it domain.Item) {
	defer s.wg.Done()
	defer s.release(it.ID, it.Epoch)

	id, epoch := it.ID, it.Epoch
	s.logger.Info(ctx, "Processing %s (%s)", it.Source.Name, id)

	// Stage 1: upload + transcribe
	start := time.Now()
	transcript, err := s.transcriber.Transcribe(ctx, it.Source, func(percent int) {
		s.progress(id, epoch, percent)
	})
	s.metrics.StageDuration(stageTranscribe, time.Since(start))
	if err != nil {
		s.fail(ctx, id, epoch, stageTranscribe, err)
		return
	}

	if _, err := s.apply(id, epoch, func(it *domain.Item) error {
		it.Status = domain.StatusTranscribing
		it.UploadProgress = 100
		return nil
	}); err != nil {
		s.discard(ctx, id, err)
		return
	}

	if !s.settle(ctx) {
		s.fail(ctx, id, epoch, stageTranscribe, ctx.Err())
		return
	}

	if _, err := s.apply(id, epoch, func(it *domain.Item) error {
		it.Status = domain.StatusPolishing
		it.Transcript = transcript
		return nil
	}); err != nil {
		s.discard(ctx, id, err)
		return
	}

	// Stage 2: polish
	start = time.Now()
	refined, err := s.polisher.Polish(ctx, transcript)
	s.metrics.StageDuration(stagePolish, time.Since(start))
	if err != nil {
		s.fail(ctx, id, epoch, stagePolish, err)
		return
	}

	done, err := s.apply(id, epoch, func(it *domain.Item) error {
		it.Status = domain.StatusCompleted
		it.Refined = refined.Clone()
		return nil
	})
	if err != nil {
		s.discard(ctx, id, err)
		return
	}

	s.metrics.ItemCompleted(done.Source.Size)
	s.logger.Info(ctx, "Completed %s (%s)", done.Source.Name, id)
	s.record(done)
	s.dispose(done.Source)
}

// progress stores a monotonic, clamped upload percentage.
func (s *implScheduler) progress(id string, epoch uint64, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	_, _ = s.apply(id, epoch, func(it *domain.Item) error {
		if it.Status != domain.StatusUploading || percent <= it.UploadProgress {
			return errNoChange
		}
		it.UploadProgress = percent
		return nil
	})
}

// fail moves the item to ERROR, keeping whatever partial results it has.
func (s *implScheduler) fail(ctx context.Context, id string, epoch uint64, stage string, cause error) {
	msg := cause.Error()
	if msg == "" {
		msg = defaultFailureMessage
	}

	_, err := s.apply(id, epoch, func(it *domain.Item) error {
		it.Status = domain.StatusError
		it.Error = msg
		return nil
	})
	if err != nil {
		s.discard(ctx, id, err)
		return
	}

	s.metrics.ItemFailed(stage)
	s.logger.Error(ctx, "Failed to %s %s: %v", stage, id, cause)
}

// settle pauses between transcription and polishing. A zero delay still
// yields so other runs can progress.
func (s *implScheduler) settle(ctx context.Context) bool {
	if s.settleDelay <= 0 {
		runtime.Gosched()
		return true
	}

	timer := time.NewTimer(s.settleDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// record emits exactly one history snapshot per completed item.
func (s *implScheduler) record(it domain.Item) {
	if s.recorder == nil {
		return
	}

	s.mu.Lock()
	if s.recorded[it.ID] {
		s.mu.Unlock()
		return
	}
	s.recorded[it.ID] = true
	s.mu.Unlock()

	rec := domain.HistoryRecord{
		ItemID:      it.ID,
		FileName:    it.Source.Name,
		FileSize:    it.Source.Size,
		Transcript:  it.Transcript,
		CompletedAt: it.UpdatedAt,
	}
	if it.Refined != nil {
		rec.Refined = *it.Refined.Clone()
	}

	// Recording outlives the run; a shutdown must not lose a finished item.
	ctx := context.WithoutCancel(s.ctx)
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.metrics.ItemFailed(stageRecord)
		s.logger.Error(ctx, "Failed to record history for %s: %v", it.ID, err)
	}
}

// dispose hands a source file that no item needs any more to the janitor.
func (s *implScheduler) dispose(file domain.SourceFile) {
	if s.janitor == nil {
		return
	}
	s.janitor.Release(context.WithoutCancel(s.ctx), file)
}

// discard logs a result dropped because the run was superseded.
func (s *implScheduler) discard(ctx context.Context, id string, err error) {
	if isDiscarded(err) {
		s.logger.Debug(ctx, "Discarding stale result for %s", id)
		return
	}
	s.logger.Warn(ctx, "Dropping update for %s: %v", id, err)
}
