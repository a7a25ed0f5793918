package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/intake"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

func TestWatcherDetectsMediaFiles(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 4)

	w, err := New(dir, 10*time.Millisecond, func(_ context.Context, path string) error {
		seen <- filepath.Base(path)
		return nil
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the loop a moment to start receiving.
	time.Sleep(20 * time.Millisecond)
	for _, name := range []string{"notes.txt", "talk.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-seen:
		if got != "talk.mp3" {
			t.Errorf("handled %s, want talk.mp3", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("media file was not detected")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}

	select {
	case extra := <-seen:
		t.Errorf("unexpected handler call for %s", extra)
	default:
	}
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), 0, nil, logger.Nop())
	if err == nil {
		t.Fatal("New() on a missing dir should fail")
	}
}

type fakeQueue struct {
	mu    sync.Mutex
	files []domain.SourceFile
	err   error
}

func (q *fakeQueue) Enqueue(files []domain.SourceFile) ([]domain.Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	q.files = append(q.files, files...)
	items := make([]domain.Item, len(files))
	for i, f := range files {
		items[i] = domain.Item{ID: "id-" + f.Name, Source: f, Status: domain.StatusQueued}
	}
	return items, nil
}

func TestEnqueueHandler(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.wav")
	big := filepath.Join(dir, "big.wav")
	os.WriteFile(small, make([]byte, 10), 0o644)
	os.WriteFile(big, make([]byte, 100), 0o644)

	q := &fakeQueue{}
	h := EnqueueHandler(q, intake.New(config.IntakeConfig{MaxFileSize: 50}), logger.Nop())

	if err := h(context.Background(), small); err != nil {
		t.Fatalf("handler(small) error = %v", err)
	}
	if err := h(context.Background(), big); !errors.Is(err, intake.ErrTooLarge) {
		t.Errorf("handler(big) error = %v, want ErrTooLarge", err)
	}

	if len(q.files) != 1 || q.files[0].Name != "small.wav" || q.files[0].MIMEType != "audio/wav" {
		t.Errorf("enqueued = %+v", q.files)
	}

	q.err = errors.New("scheduler closed")
	if err := h(context.Background(), small); err == nil {
		t.Error("handler should surface enqueue errors")
	}
}

func TestScanExisting(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.m4a", "readme.md"} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644)
	}
	os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755)

	var got []string
	n, err := ScanExisting(context.Background(), dir, func(_ context.Context, path string) error {
		got = append(got, filepath.Base(path))
		if filepath.Base(path) == "b.mp4" {
			return errors.New("rejected")
		}
		return nil
	}, logger.Nop())

	if err != nil {
		t.Fatalf("ScanExisting() error = %v", err)
	}
	if n != 1 {
		t.Errorf("handled = %d, want 1", n)
	}
	if len(got) != 2 || got[0] != "a.m4a" || got[1] != "b.mp4" {
		t.Errorf("order = %v", got)
	}
}

func TestOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	calls, fail := 0, true
	h := Once(func(_ context.Context, _ string) error {
		calls++
		if fail {
			fail = false
			return errors.New("busy")
		}
		return nil
	})

	ctx := context.Background()
	if err := h(ctx, path); err == nil {
		t.Fatal("first call should surface the handler error")
	}
	// A failed attempt does not count as handled.
	if err := h(ctx, path); err != nil {
		t.Fatalf("second call error = %v", err)
	}
	h(ctx, path)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	// A rewritten file is a new version.
	if err := os.WriteFile(path, []byte("longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	h(ctx, path)
	if calls != 3 {
		t.Errorf("calls after rewrite = %d, want 3", calls)
	}
}

func TestScanThenWatchQueuesFileOnce(t *testing.T) {
	dir := t.TempDir()

	var (
		mu    sync.Mutex
		calls int
	)
	handler := Once(func(_ context.Context, _ string) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	w, err := New(dir, 10*time.Millisecond, handler, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	// Written after the watch is registered but before the scan runs.
	if err := os.WriteFile(filepath.Join(dir, "talk.mp3"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ScanExisting(context.Background(), dir, handler, logger.Nop()); err != nil {
		t.Fatalf("ScanExisting() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}
