// Package export renders history records as JSON, plain text, markdown or docx.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatDocx     Format = "docx"
)

// Part selects which text a plain-text export contains.
type Part string

const (
	PartClean   Part = "clean"
	PartRaw     Part = "raw"
	PartSummary Part = "summary"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrUnknownPart   = errors.New("unknown export part")
	ErrEmpty         = errors.New("nothing to export")
)

// ParseFormat accepts a format name, case-insensitively; "" means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatText, FormatMarkdown, FormatDocx:
		return f, nil
	case "text":
		return FormatText, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ParsePart accepts a part name; "" means the polished text.
func ParsePart(s string) (Part, error) {
	switch p := Part(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PartClean, nil
	case PartClean, PartRaw, PartSummary:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPart, s)
	}
}

type jsonExport struct {
	Filename           string   `json:"filename"`
	Date               string   `json:"date"`
	RawTranscript      string   `json:"raw_transcript"`
	PolishedTranscript string   `json:"polished_transcript"`
	Summary            string   `json:"summary"`
	Keywords           []string `json:"keywords"`
}

// JSON renders the full record.
func JSON(rec domain.HistoryRecord) ([]byte, error) {
	keywords := rec.Refined.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return json.MarshalIndent(jsonExport{
		Filename:           rec.FileName,
		Date:               rec.CompletedAt.UTC().Format(time.RFC3339),
		RawTranscript:      rec.Transcript,
		PolishedTranscript: rec.Refined.PolishedText,
		Summary:            rec.Refined.Summary,
		Keywords:           keywords,
	}, "", "  ")
}

// Text returns one part of the record.
func Text(rec domain.HistoryRecord, part Part) (string, error) {
	var text string
	switch part {
	case PartClean, "":
		text = rec.Refined.PolishedText
	case PartRaw:
		text = rec.Transcript
	case PartSummary:
		text = rec.Refined.Summary
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPart, part)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Markdown renders summary, keywords and both transcripts.
func Markdown(rec domain.HistoryRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rec.FileName)
	fmt.Fprintf(&b, "_%s_\n\n", rec.CompletedAt.Format("2006-01-02 15:04"))

	if rec.Refined.Summary != "" {
		fmt.Fprintf(&b, "## Summary\n\n%s\n\n", strings.TrimSpace(rec.Refined.Summary))
	}
	if len(rec.Refined.Keywords) > 0 {
		fmt.Fprintf(&b, "**Keywords:** %s\n\n", strings.Join(rec.Refined.Keywords, ", "))
	}
	if rec.Refined.PolishedText != "" {
		fmt.Fprintf(&b, "## Polished Transcript\n\n%s\n\n", strings.TrimSpace(rec.Refined.PolishedText))
	}
	if rec.Transcript != "" {
		fmt.Fprintf(&b, "## Raw Transcript\n\n%s\n", strings.TrimSpace(rec.Transcript))
	}

	return b.String()
}

// FileName is the download name for rec in the given format.
func FileName(rec domain.HistoryRecord, format Format, part Part) string {
	base := strings.TrimSuffix(rec.FileName, filepath.Ext(rec.FileName))
	if base == "" {
		base = rec.ID
	}

	switch format {
	case FormatJSON:
		return "sonote_" + base + ".json"
	case FormatText:
		if part == "" {
			part = PartClean
		}
		return fmt.Sprintf("%s_%s.txt", rec.FileName, part)
	default:
		return base + "." + string(format)
	}
}

// WriteFile renders rec into dir and returns the written path.
func WriteFile(rec domain.HistoryRecord, format Format, part Part, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(rec, format, part))

	var data []byte
	switch format {
	case FormatJSON:
		b, err := JSON(rec)
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		data = b
	case FormatText:
		text, err := Text(rec, part)
		if err != nil {
			return "", err
		}
		data = []byte(text)
	case FormatMarkdown:
		data = []byte(Markdown(rec))
	case FormatDocx:
		if err := Docx(rec, path); err != nil {
			return "", fmt.Errorf("write docx: %w", err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
