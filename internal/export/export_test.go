package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

func sampleRecord() domain.HistoryRecord {
	return domain.HistoryRecord{
		ID:         "rec-1",
		ItemID:     "item-1",
		FileName:   "demo.mp3",
		FileSize:   2048,
		Transcript: "hello world",
		Refined: domain.Refined{
			PolishedText: "Hello, **world**.",
			Summary:      "Greeting.",
			Keywords:     []string{"greeting", "demo"},
		},
		CompletedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleRecord())
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["filename"] != "demo.mp3" || got["raw_transcript"] != "hello world" || got["summary"] != "Greeting." {
		t.Errorf("JSON() = %s", data)
	}
	if got["date"] != "2026-01-02T03:04:05Z" {
		t.Errorf("date = %v", got["date"])
	}
}

func TestText(t *testing.T) {
	rec := sampleRecord()

	tests := []struct {
		part    Part
		want    string
		wantErr error
	}{
		{PartClean, "Hello, **world**.", nil},
		{PartRaw, "hello world", nil},
		{PartSummary, "Greeting.", nil},
		{Part("bogus"), "", ErrUnknownPart},
	}

	for _, tt := range tests {
		t.Run(string(tt.part), func(t *testing.T) {
			got, err := Text(rec, tt.part)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Text() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}

	rec.Refined.Summary = ""
	if _, err := Text(rec, PartSummary); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty summary error = %v, want ErrEmpty", err)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleRecord())

	for _, want := range []string{
		"# demo.mp3",
		"## Summary\n\nGreeting.",
		"**Keywords:** greeting, demo",
		"## Polished Transcript",
		"## Raw Transcript\n\nhello world",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q:\n%s", want, md)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatJSON, "JSON": FormatJSON, "txt": FormatText, "text": FormatText, "markdown": FormatMarkdown, "docx": FormatDocx}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(pdf) error = %v", err)
	}
	if _, err := ParsePart("full"); !errors.Is(err, ErrUnknownPart) {
		t.Errorf("ParsePart(full) error = %v", err)
	}
}

func TestFileName(t *testing.T) {
	rec := sampleRecord()
	tests := []struct {
		format Format
		part   Part
		want   string
	}{
		{FormatJSON, "", "sonote_demo.json"},
		{FormatText, PartRaw, "demo.mp3_raw.txt"},
		{FormatText, "", "demo.mp3_clean.txt"},
		{FormatMarkdown, "", "demo.md"},
		{FormatDocx, "", "demo.docx"},
	}
	for _, tt := range tests {
		if got := FileName(rec, tt.format, tt.part); got != tt.want {
			t.Errorf("FileName(%s, %s) = %q, want %q", tt.format, tt.part, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	for _, format := range []Format{FormatJSON, FormatText, FormatMarkdown, FormatDocx} {
		t.Run(string(format), func(t *testing.T) {
			path, err := WriteFile(sampleRecord(), format, PartClean, dir)
			if err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			if info.Size() == 0 {
				t.Errorf("%s is empty", path)
			}
		})
	}
}
