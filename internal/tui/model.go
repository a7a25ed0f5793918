// Package tui renders the live batch queue in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// RefreshInterval is how often the queue snapshot is polled.
const RefreshInterval = 250 * time.Millisecond

// Queue is the part of the scheduler the view reads and drives.
type Queue interface {
	Items() []domain.Item
	Stats() domain.Stats
	Retry(id string) error
	Cancel(id string) error
	Remove(id string) error
}

// Model is the root bubbletea model for the queue view.
type Model struct {
	queue Queue

	items    []domain.Item
	stats    domain.Stats
	selected int

	// exitWhenDone quits once every item is COMPLETED or ERROR.
	exitWhenDone bool
	done         bool

	statusText string
	width      int
	height     int
}

// New creates a Model over q.
func New(q Queue, exitWhenDone bool) Model {
	return Model{
		queue:        q,
		exitWhenDone: exitWhenDone,
		statusText:   "Waiting for files...",
	}
}

// Done reports whether the model quit because the batch finished.
func (m Model) Done() bool {
	return m.done
}

// Init loads the first snapshot.
func (m Model) Init() tea.Cmd {
	return snapshotCmd(m.queue)
}

func snapshotCmd(q Queue) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{items: q.Items(), stats: q.Stats()}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(RefreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// actionCmd runs a queue action off the update loop.
func actionCmd(action, name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{action: action, name: name, err: fn()}
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, snapshotCmd(m.queue)

	case snapshotMsg:
		m.items = msg.items
		m.stats = msg.stats
		if m.selected >= len(m.items) {
			m.selected = max(0, len(m.items)-1)
		}
		if m.exitWhenDone && m.finished() {
			m.done = true
			return m, tea.Quit
		}
		return m, tickCmd()

	case actionResultMsg:
		if msg.err != nil {
			m.statusText = fmt.Sprintf("%s %s failed: %v", msg.action, msg.name, msg.err)
		} else {
			m.statusText = fmt.Sprintf("%s %s", msg.action, msg.name)
		}
		return m, snapshotCmd(m.queue)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		return m, tea.Quit

	case KeyUp, KeyK:
		if m.selected > 0 {
			m.selected--
		}

	case KeyDown, KeyJ:
		if m.selected < len(m.items)-1 {
			m.selected++
		}

	case KeyRetry:
		if it, ok := m.current(); ok {
			return m, actionCmd("Retried", it.Source.Name, func() error { return m.queue.Retry(it.ID) })
		}

	case KeyCancel:
		if it, ok := m.current(); ok {
			return m, actionCmd("Cancelled", it.Source.Name, func() error { return m.queue.Cancel(it.ID) })
		}

	case KeyRemove:
		if it, ok := m.current(); ok {
			return m, actionCmd("Removed", it.Source.Name, func() error { return m.queue.Remove(it.ID) })
		}
	}

	return m, nil
}

func (m Model) current() (domain.Item, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return domain.Item{}, false
	}
	return m.items[m.selected], true
}

// finished reports whether a non-empty batch has no queued or active items.
func (m Model) finished() bool {
	return m.stats.Total > 0 && m.stats.Queued == 0 && m.stats.Active == 0
}

// View renders the header, progress bar, item list and detail pane.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sonote") + dimStyle.Render("  batch transcription") + "\n")
	b.WriteString(m.renderProgress() + "\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", m.lineWidth())) + "\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("No files in the queue.") + "\n")
	}
	for i, it := range m.items {
		b.WriteString(m.renderItem(i, it) + "\n")
	}

	if it, ok := m.current(); ok {
		b.WriteString(dividerStyle.Render(strings.Repeat("─", m.lineWidth())) + "\n")
		b.WriteString(renderDetail(it))
	}

	b.WriteString("\n" + dimStyle.Render(m.statusText) + "\n")
	b.WriteString(renderFooter())
	return b.String()
}

func (m Model) lineWidth() int {
	if m.width > 0 {
		return m.width
	}
	return 60
}

func (m Model) renderProgress() string {
	const barWidth = 30
	pct := m.stats.ProgressPercent()
	filled := int(pct / 100 * barWidth)

	bar := barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))

	return fmt.Sprintf("%s %3.0f%%  %d/%d done, %d active, %d queued, %d failed",
		bar, pct, m.stats.Completed, m.stats.Total, m.stats.Active, m.stats.Queued, m.stats.Failed)
}

func (m Model) renderItem(i int, it domain.Item) string {
	cursor := "  "
	name := it.Source.Name
	if i == m.selected {
		cursor = "> "
		name = selectedStyle.Render(name)
	}

	badge := badgeStyle(it.Status).Render(fmt.Sprintf("%-12s", it.Status))
	line := cursor + badge + " " + name

	if it.Status == domain.StatusUploading {
		line += dimStyle.Render(fmt.Sprintf("  %d%%", it.UploadProgress))
	}
	return line
}

func renderDetail(it domain.Item) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s  %s\n", it.Source.Name,
		dimStyle.Render(humanize.IBytes(uint64(max(it.Source.Size, 0)))),
		dimStyle.Render("updated "+humanize.Time(it.UpdatedAt)))

	switch {
	case it.Status == domain.StatusError:
		b.WriteString(errorTextStyle.Render(FriendlyError(it.Error)) + "\n")
	case it.Refined != nil:
		if it.Refined.Summary != "" {
			b.WriteString(it.Refined.Summary + "\n")
		}
		if len(it.Refined.Keywords) > 0 {
			b.WriteString(dimStyle.Render(strings.Join(it.Refined.Keywords, " · ")) + "\n")
		}
	case it.Transcript != "":
		b.WriteString(dimStyle.Render(truncate(it.Transcript, 200)) + "\n")
	}
	return b.String()
}

func renderFooter() string {
	keys := []struct{ key, desc string }{
		{"j/k", "move"},
		{KeyRetry, "retry"},
		{KeyCancel, "cancel"},
		{KeyRemove, "remove"},
		{KeyQuit, "quit"},
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k.key)+" "+footerDescStyle.Render(k.desc))
	}
	return strings.Join(parts, "  ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
