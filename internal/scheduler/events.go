package scheduler

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// EventType classifies collection changes.
type EventType string

const (
	EventEnqueued EventType = "enqueued"
	EventStatus   EventType = "status"
	EventProgress EventType = "progress"
	EventRemoved  EventType = "removed"
)

// Event is a sequenced change notification for UI and API consumers.
type Event struct {
	Seq       int64                `json:"seq"`
	Timestamp time.Time            `json:"timestamp"`
	ItemID    string               `json:"itemId"`
	Type      EventType            `json:"type"`
	Status    domain.ProcessStatus `json:"status,omitempty"`
	Progress  int                  `json:"progress,omitempty"`
	Message   string               `json:"message,omitempty"`
}

// eventLog stores recent events and provides incremental reads.
type eventLog struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

func newEventLog(maxEvents int) *eventLog {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &eventLog{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// publish appends one event and assigns sequence and timestamp.
func (l *eventLog) publish(event Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextSeq++
	event.Seq = l.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	l.events = append(l.events, event)
	if len(l.events) > l.maxEvents {
		trim := len(l.events) - l.maxEvents
		l.events = append([]Event(nil), l.events[trim:]...)
	}

	return event
}

// since returns events with sequence strictly greater than seq.
func (l *eventLog) since(seq int64) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, 0, len(l.events))
	for _, event := range l.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
