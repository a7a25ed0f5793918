// Package intake validates media files before they are enqueued.
package intake

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// DefaultMaxFileSize is the upload limit when none is configured.
const DefaultMaxFileSize = 100 * 1024 * 1024

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

// Extensions the platform MIME table may not know.
var mediaTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".aac":  "audio/aac",
	".amr":  "audio/amr",
	".wma":  "audio/x-ms-wma",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
}

// Rejection pairs a refused file with the reason.
type Rejection struct {
	File domain.SourceFile
	Err  error
}

// Validator applies the configured type and size rules.
type Validator struct {
	maxSize  int64
	prefixes []string
}

// New creates a Validator from the intake config.
func New(cfg config.IntakeConfig) *Validator {
	v := &Validator{maxSize: cfg.MaxFileSize, prefixes: cfg.AllowedPrefixes}
	if v.maxSize <= 0 {
		v.maxSize = DefaultMaxFileSize
	}
	if len(v.prefixes) == 0 {
		v.prefixes = []string{"audio/", "video/"}
	}
	return v
}

// MaxSize returns the configured size limit in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks the MIME type prefix and the size limit.
func (v *Validator) Validate(file domain.SourceFile) error {
	if !v.allowed(file.MIMEType) {
		return fmt.Errorf("%s (%s): %w", file.Name, file.MIMEType, ErrUnsupportedType)
	}
	if file.Size > v.maxSize {
		return fmt.Errorf("%s is %s, limit %s: %w", file.Name,
			humanize.IBytes(uint64(file.Size)), humanize.IBytes(uint64(v.maxSize)), ErrTooLarge)
	}
	return nil
}

// Filter splits files into accepted and rejected, preserving order.
func (v *Validator) Filter(files []domain.SourceFile) ([]domain.SourceFile, []Rejection) {
	var (
		accepted []domain.SourceFile
		rejected []Rejection
	)
	for _, f := range files {
		if err := v.Validate(f); err != nil {
			rejected = append(rejected, Rejection{File: f, Err: err})
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted, rejected
}

func (v *Validator) allowed(mimeType string) bool {
	for _, p := range v.prefixes {
		if strings.HasPrefix(mimeType, p) {
			return true
		}
	}
	return false
}

// Inspect builds a SourceFile from a path on disk.
func Inspect(path string) (domain.SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.SourceFile{}, fmt.Errorf("%s is a directory: %w", path, ErrUnsupportedType)
	}

	mimeType, err := DetectType(path)
	if err != nil {
		return domain.SourceFile{}, err
	}

	return domain.SourceFile{
		Name:     filepath.Base(path),
		Path:     path,
		Size:     info.Size(),
		MIMEType: mimeType,
	}, nil
}

// DetectType resolves the MIME type from the extension, falling back to
// content sniffing.
func DetectType(path string) (string, error) {
	if t := TypeByExtension(path); t != "" {
		return t, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return stripParams(http.DetectContentType(head[:n])), nil
}

// TypeByExtension returns the media type for the file extension, or "".
func TypeByExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	return stripParams(mime.TypeByExtension(ext))
}

// IsMedia reports whether the extension maps to an audio or video type.
func IsMedia(name string) bool {
	t := TypeByExtension(name)
	return strings.HasPrefix(t, "audio/") || strings.HasPrefix(t, "video/")
}

func stripParams(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return t
}
