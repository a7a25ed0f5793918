package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/remote"
)

const (
	msgNetwork = "Network error during upload"
	msgTimeout = "Upload timed out"
	msgStatus  = "ASR Service Error"
	msgParse   = "Failed to parse response"
)

type transcribeResponse struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

// Transcribe posts the file as multipart field "file" and reports upload
// progress as the request body is consumed.
func (t *implTranscriber) Transcribe(ctx context.Context, file domain.SourceFile, onProgress func(percent int)) (string, error) {
	body, contentType, err := buildForm(file)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	total := int64(body.Len())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &progressReader{
		r:          body,
		total:      total,
		onProgress: onProgress,
	})
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)

	t.logger.Debug(ctx, "Uploading %s (%d bytes) to %s", file.Name, total, t.endpoint)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", remote.Transport(err, msgNetwork, msgTimeout)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", remote.Status(msgStatus, resp)
	}

	var out transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", remote.Parse(msgParse, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "Transcription failed"
		}
		return "", &remote.Error{Kind: remote.KindService, Message: msg}
	}

	t.logger.Info(ctx, "Transcribed %s (%d chars)", file.Name, len([]rune(out.Transcript)))
	return out.Transcript, nil
}

// buildForm reads the source file into a multipart body. The body is
// buffered so its length is known and progress is computable.
func buildForm(file domain.SourceFile) (*bytes.Buffer, string, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	name := file.Name
	if name == "" {
		name = filepath.Base(file.Path)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// progressReader reports the share of the body read so far. Percent
// values are only emitted when they change.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	last       int
	onProgress func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	if p.onProgress != nil && p.total > 0 && n > 0 {
		percent := int(p.read * 100 / p.total)
		if percent > p.last {
			p.last = percent
			p.onProgress(percent)
		}
	}
	return n, err
}
