package tui

import "github.com/nguyentantai21042004/sonote/internal/domain"

// tickMsg triggers a refresh of the queue snapshot.
type tickMsg struct{}

// snapshotMsg carries a fresh copy of the queue.
type snapshotMsg struct {
	items []domain.Item
	stats domain.Stats
}

// actionResultMsg reports the outcome of retry, cancel or remove.
type actionResultMsg struct {
	action string
	name   string
	err    error
}
