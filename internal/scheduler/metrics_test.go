package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

// mockMetrics is a mock implementation of the Metrics interface
type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) ItemsEnqueued(n int) {
	m.Called(n)
}

func (m *mockMetrics) RunStarted() {
	m.Called()
}

func (m *mockMetrics) RunFinished() {
	m.Called()
}

func (m *mockMetrics) StageDuration(stage string, d time.Duration) {
	m.Called(stage, d)
}

func (m *mockMetrics) ItemCompleted(sizeBytes int64) {
	m.Called(sizeBytes)
}

func (m *mockMetrics) ItemFailed(stage string) {
	m.Called(stage)
}

func TestMetricsObserveRuns(t *testing.T) {
	m := &mockMetrics{}
	m.On("ItemsEnqueued", 2).Once()
	m.On("RunStarted").Twice()
	m.On("RunFinished").Twice()
	m.On("StageDuration", stageTranscribe, mock.AnythingOfType("time.Duration")).Twice()
	m.On("StageDuration", stagePolish, mock.AnythingOfType("time.Duration")).Once()
	m.On("ItemCompleted", int64(1024)).Once()
	m.On("ItemFailed", stageTranscribe).Once()

	tr := &stubTranscriber{failOnce: map[string]error{"broken.mp3": errors.New("Upload timed out")}}
	s := New(config.SchedulerConfig{ConcurrentLimit: 2}, Deps{
		Transcriber: tr,
		Polisher:    &stubPolisher{},
		Recorder:    &stubRecorder{},
		Metrics:     m,
	}, logger.Nop())
	t.Cleanup(s.Close)

	added, err := s.Enqueue(files("demo.mp3", "broken.mp3"))
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	waitIdle(t, s)

	if got := statusOf(s, added[0].ID); got != domain.StatusCompleted {
		t.Errorf("demo.mp3 status = %s, want COMPLETED", got)
	}
	if got := statusOf(s, added[1].ID); got != domain.StatusError {
		t.Errorf("broken.mp3 status = %s, want ERROR", got)
	}
	m.AssertExpectations(t)
}

func TestMetricsCancelledRunIsNotAFailure(t *testing.T) {
	m := &mockMetrics{}
	m.On("ItemsEnqueued", 1).Once()
	m.On("RunStarted").Once()
	m.On("RunFinished").Once()
	m.On("StageDuration", stageTranscribe, mock.Anything).Once()

	gate := make(chan struct{})
	tr := &stubTranscriber{block: map[string]chan struct{}{"slow.mp3": gate}}
	s := New(config.SchedulerConfig{ConcurrentLimit: 1}, Deps{
		Transcriber: tr,
		Polisher:    &stubPolisher{},
		Metrics:     m,
	}, logger.Nop())
	t.Cleanup(s.Close)

	added, err := s.Enqueue(files("slow.mp3"))
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	waitFor(t, "transcription to start", func() bool { return len(tr.Calls()) == 1 })

	if err := s.Cancel(added[0].ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	waitIdle(t, s)

	m.AssertExpectations(t)
	m.AssertNotCalled(t, "ItemFailed", mock.Anything)
}
