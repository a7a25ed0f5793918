package domain

import "time"

// ProcessStatus tracks each pipeline stage for a single batch item.
type ProcessStatus string

const (
	StatusIdle         ProcessStatus = "IDLE"
	StatusQueued       ProcessStatus = "QUEUED"
	StatusUploading    ProcessStatus = "UPLOADING"
	StatusTranscribing ProcessStatus = "TRANSCRIBING"
	StatusPolishing    ProcessStatus = "POLISHING"
	StatusCompleted    ProcessStatus = "COMPLETED"
	StatusError        ProcessStatus = "ERROR"
)

// IsActive reports whether the status is one of the processing stages.
func (s ProcessStatus) IsActive() bool {
	switch s {
	case StatusUploading, StatusTranscribing, StatusPolishing:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no automatic transition leaves the status.
func (s ProcessStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// SourceFile is the immutable input of a batch item.
type SourceFile struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType"`
}

// Refined is the polishing stage output.
type Refined struct {
	PolishedText string   `json:"polishedText"`
	Summary      string   `json:"summary"`
	Keywords     []string `json:"keywords"`
}

// Clone returns a deep copy so snapshots never share the keyword slice.
func (r *Refined) Clone() *Refined {
	if r == nil {
		return nil
	}
	out := *r
	out.Keywords = append([]string(nil), r.Keywords...)
	return &out
}

// Item is one file's unit of work through the pipeline.
type Item struct {
	ID             string        `json:"id"`
	Source         SourceFile    `json:"source"`
	Status         ProcessStatus `json:"status"`
	UploadProgress int           `json:"uploadProgress"`
	Transcript     string        `json:"transcript,omitempty"`
	Refined        *Refined      `json:"refined,omitempty"`
	Error          string        `json:"error,omitempty"`
	EnqueuedAt     time.Time     `json:"enqueuedAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`

	// Epoch identifies the current pipeline run; results carrying an
	// older epoch are discarded.
	Epoch uint64 `json:"-"`
}

// Clone returns a snapshot that shares no mutable state with the item.
func (it Item) Clone() Item {
	it.Refined = it.Refined.Clone()
	return it
}

// HistoryRecord is an append-only snapshot of a completed item.
type HistoryRecord struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"itemId"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	Transcript  string    `json:"transcript"`
	Refined     Refined   `json:"refined"`
	CompletedAt time.Time `json:"completedAt"`
}

// Stats aggregates the collection for progress displays.
type Stats struct {
	Total     int `json:"total"`
	Queued    int `json:"queued"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// ProgressPercent is the share of completed items, 0-100.
func (s Stats) ProgressPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}
