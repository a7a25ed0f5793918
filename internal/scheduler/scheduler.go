package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// Enqueue appends new QUEUED items in the order given.
func (s *implScheduler) Enqueue(files []domain.SourceFile) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	now := time.Now()
	added := make([]domain.Item, 0, len(files))
	for _, file := range files {
		it := domain.Item{
			ID:         s.newID(),
			Source:     file,
			Status:     domain.StatusQueued,
			EnqueuedAt: now,
			UpdatedAt:  now,
		}
		s.items[it.ID] = it
		s.order = append(s.order, it.ID)
		s.events.publish(Event{ItemID: it.ID, Type: EventEnqueued, Status: it.Status, Message: file.Name})
		added = append(added, it.Clone())
	}

	if len(added) > 0 {
		s.logger.Info(s.ctx, "Enqueued %d file(s)", len(added))
		s.metrics.ItemsEnqueued(len(added))
	}

	s.admitLocked()
	s.signalLocked()
	return added, nil
}

// Retry resets an ERROR item to QUEUED in place.
func (s *implScheduler) Retry(id string) error {
	_, err := s.apply(id, 0, func(it *domain.Item) error {
		if it.Status != domain.StatusError {
			return ErrNotRetryable
		}
		it.Status = domain.StatusQueued
		it.Error = ""
		it.Transcript = ""
		it.Refined = nil
		it.UploadProgress = 0
		it.Epoch = s.bumpLocked(it.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("retry %s: %w", id, err)
	}

	s.logger.Info(s.ctx, "Retrying item %s", id)
	return nil
}

// Cancel forces a non-terminal item to ERROR. A live run keeps its slot
// until it settles; its results are discarded.
func (s *implScheduler) Cancel(id string) error {
	_, err := s.apply(id, 0, func(it *domain.Item) error {
		if !isCancellable(it.Status) {
			return ErrNotCancellable
		}
		it.Status = domain.StatusError
		it.Error = CancelledMessage
		it.Epoch = s.bumpLocked(it.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel %s: %w", id, err)
	}

	s.logger.Info(s.ctx, "Cancelled item %s", id)
	return nil
}

// Remove deletes the item from the collection.
func (s *implScheduler) Remove(id string) error {
	s.mu.Lock()
	it, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove %s: %w", id, ErrItemNotFound)
	}

	s.bumpLocked(id)
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.events.publish(Event{ItemID: id, Type: EventRemoved, Status: it.Status, Message: it.Source.Name})
	s.logger.Info(s.ctx, "Removed item %s (%s)", id, it.Source.Name)

	s.admitLocked()
	s.signalLocked()
	s.mu.Unlock()

	s.dispose(it.Source)
	return nil
}

// Get returns a snapshot of one item.
func (s *implScheduler) Get(id string) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.Item{}, false
	}
	return it.Clone(), true
}

// Items returns snapshots in collection order.
func (s *implScheduler) Items() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// Stats counts items per status group.
func (s *implScheduler) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st domain.Stats
	for _, it := range s.items {
		st.Total++
		switch {
		case it.Status == domain.StatusQueued:
			st.Queued++
		case it.Status.IsActive():
			st.Active++
		case it.Status == domain.StatusCompleted:
			st.Completed++
		case it.Status == domain.StatusError:
			st.Failed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

// Events returns change events with a sequence greater than since.
func (s *implScheduler) Events(since int64) []Event {
	return s.events.since(since)
}

func (s *implScheduler) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		idle := s.active == 0 && !s.hasQueuedLocked()
		stopped := s.closed && s.active == 0
		changed := s.changed
		s.mu.Unlock()

		if idle {
			return nil
		}
		if stopped {
			return ErrClosed
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops admitting, cancels live runs and waits for them to settle.
func (s *implScheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.signalLocked()
	s.mu.Unlock()
}

// apply is the single update entry point. It runs mutate on a copy of the
// item, validates the status edge and replaces the item in place. A
// non-zero epoch must match the item's current run.
func (s *implScheduler) apply(id string, epoch uint64, mutate func(it *domain.Item) error) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[id]
	if !ok {
		return domain.Item{}, ErrItemNotFound
	}
	if epoch != 0 && cur.Epoch != epoch {
		return domain.Item{}, errStaleRun
	}

	next := cur.Clone()
	if err := mutate(&next); err != nil {
		return domain.Item{}, err
	}
	if !isValidTransition(cur.Status, next.Status) {
		return domain.Item{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, next.Status)
	}

	next.UpdatedAt = time.Now()
	s.items[id] = next

	event := Event{ItemID: id, Type: EventStatus, Status: next.Status, Message: next.Error}
	if cur.Status == next.Status {
		event.Type = EventProgress
		event.Progress = next.UploadProgress
	}
	s.events.publish(event)

	s.admitLocked()
	s.signalLocked()
	return next.Clone(), nil
}

// admitLocked starts pipeline runs for QUEUED items, in collection order,
// while live runs are below the limit. Safe to call redundantly.
func (s *implScheduler) admitLocked() {
	if s.closed {
		return
	}

	for _, id := range s.order {
		if s.active >= s.limit {
			return
		}

		it := s.items[id]
		if it.Status != domain.StatusQueued {
			continue
		}

		it.Epoch = s.bumpLocked(id)
		it.Status = domain.StatusUploading
		it.UploadProgress = 0
		it.UpdatedAt = time.Now()
		s.items[id] = it

		runCtx, cancel := context.WithCancel(s.ctx)
		s.runs[id] = runHandle{epoch: it.Epoch, cancel: cancel}
		s.active++
		s.wg.Add(1)
		s.metrics.RunStarted()
		s.events.publish(Event{ItemID: id, Type: EventStatus, Status: it.Status})

		go s.run(runCtx, it.Clone())
	}
}

// release ends one pipeline run and re-evaluates admission.
func (s *implScheduler) release(id string, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active--
	if h, ok := s.runs[id]; ok && h.epoch == epoch {
		h.cancel()
		delete(s.runs, id)
	}
	s.metrics.RunFinished()

	s.admitLocked()
	s.signalLocked()
}

// bumpLocked starts a new epoch for id and cancels the context of its
// live run, if any.
func (s *implScheduler) bumpLocked(id string) uint64 {
	if h, ok := s.runs[id]; ok {
		h.cancel()
		delete(s.runs, id)
	}
	s.nextEpoch++
	return s.nextEpoch
}

func (s *implScheduler) hasQueuedLocked() bool {
	for _, it := range s.items {
		if it.Status == domain.StatusQueued {
			return true
		}
	}
	return false
}

// signalLocked wakes every Wait caller.
func (s *implScheduler) signalLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// isDiscarded reports whether err means the run was superseded.
func isDiscarded(err error) bool {
	return errors.Is(err, errStaleRun) || errors.Is(err, ErrItemNotFound)
}
