package polisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/remote"
)

type polishRequest struct {
	Text string `json:"text"`
}

type polishResponse struct {
	Success      bool     `json:"success"`
	PolishedText string   `json:"polishedText"`
	Summary      string   `json:"summary"`
	Keywords     []string `json:"keywords"`
	Error        string   `json:"error"`
}

// Polish sends the transcript to the backend's polish endpoint.
func (b *implBackend) Polish(ctx context.Context, transcript string) (domain.Refined, error) {
	payload, err := json.Marshal(polishRequest{Text: transcript})
	if err != nil {
		return domain.Refined{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Refined{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return domain.Refined{}, remote.Transport(err, "Network error during polishing", "Polishing timed out")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Refined{}, remote.Status("LLM Service Error", resp)
	}

	var out polishResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Refined{}, remote.Parse("Failed to parse response", err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "Polishing failed"
		}
		return domain.Refined{}, &remote.Error{Kind: remote.KindService, Message: msg}
	}

	b.logger.Debug(ctx, "Polished transcript: %d keywords", len(out.Keywords))
	return domain.Refined{
		PolishedText: out.PolishedText,
		Summary:      out.Summary,
		Keywords:     nonNil(out.Keywords),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
