package polisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/logger"
	"github.com/nguyentantai21042004/sonote/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRefined(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantOK   bool
		wantText string
		wantKeys []string
	}{
		{
			name:     "plain json",
			content:  `{"polishedText":"Hello, world.","summary":"Greeting.","keywords":["greeting"]}`,
			wantOK:   true,
			wantText: "Hello, world.",
			wantKeys: []string{"greeting"},
		},
		{
			name:     "json fence",
			content:  "Here you go:\n```json\n{\"polishedText\":\"A.\",\"summary\":\"S\",\"keywords\":[]}\n```\nDone.",
			wantOK:   true,
			wantText: "A.",
			wantKeys: []string{},
		},
		{
			name:     "plain fence",
			content:  "```\n{\"polishedText\":\"B.\",\"summary\":\"S\",\"keywords\":[\"x\",\"y\"]}\n```",
			wantOK:   true,
			wantText: "B.",
			wantKeys: []string{"x", "y"},
		},
		{
			name:     "missing field",
			content:  `{"polishedText":"only text"}`,
			wantOK:   false,
			wantText: `{"polishedText":"only text"}`,
			wantKeys: []string{},
		},
		{
			name:     "not json",
			content:  "  just some prose  ",
			wantOK:   false,
			wantText: "just some prose",
			wantKeys: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRefined(tt.content)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantText, got.PolishedText)
			assert.Equal(t, tt.wantKeys, got.Keywords)
			if !tt.wantOK {
				assert.Equal(t, FallbackSummary, got.Summary)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "语音", truncateRunes("语音识别", 2))
}

func newGemini(keys []string, gen generateFunc) *implGemini {
	return &implGemini{apiKeys: keys, model: DefaultModel, logger: logger.Nop(), generate: gen}
}

func TestGemini_RotatesOnRateLimit(t *testing.T) {
	var used []string
	g := newGemini([]string{"k1", "k2", "k3"}, func(_ context.Context, key, _, _ string) (string, error) {
		used = append(used, key)
		if key != "k3" {
			return "", errors.New("Error 429: RESOURCE_EXHAUSTED")
		}
		return `{"polishedText":"P","summary":"S","keywords":["k"]}`, nil
	})

	got, err := g.Polish(context.Background(), "raw")

	require.NoError(t, err)
	assert.Equal(t, "P", got.PolishedText)
	assert.Equal(t, []string{"k1", "k2", "k3"}, used)
	assert.Equal(t, 2, g.currentKey)
}

func TestGemini_AllKeysExhausted(t *testing.T) {
	g := newGemini([]string{"k1", "k2"}, func(context.Context, string, string, string) (string, error) {
		return "", errors.New("quota exceeded")
	})

	_, err := g.Polish(context.Background(), "raw")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all API keys exhausted")
}

func TestGemini_OtherErrorStops(t *testing.T) {
	calls := 0
	g := newGemini([]string{"k1", "k2"}, func(context.Context, string, string, string) (string, error) {
		calls++
		return "", errors.New("invalid argument")
	})

	_, err := g.Polish(context.Background(), "raw")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, strings.HasPrefix(err.Error(), "LLM Service Error"))
}

func TestGemini_TruncatesPrompt(t *testing.T) {
	var prompt string
	g := newGemini([]string{"k"}, func(_ context.Context, _, _, p string) (string, error) {
		prompt = p
		return "no json here", nil
	})

	got, err := g.Polish(context.Background(), strings.Repeat("§", MaxTranscriptRunes+500))

	require.NoError(t, err)
	assert.Equal(t, MaxTranscriptRunes, strings.Count(prompt, "§"))
	assert.Equal(t, "no json here", got.PolishedText)
	assert.Equal(t, FallbackSummary, got.Summary)
}

func TestNewGemini_RequiresKeys(t *testing.T) {
	_, err := NewGemini(config.PolisherConfig{}, logger.Nop())
	assert.Error(t, err)
}

func TestBackend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/polish", r.URL.Path)

		var req polishRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello world", req.Text)

		io.WriteString(w, `{"success":true,"polishedText":"Hello, world.","summary":"Greeting.","keywords":["greeting"]}`)
	}))
	defer srv.Close()

	p := NewBackend(config.PolisherConfig{BaseURL: srv.URL}, logger.Nop())
	got, err := p.Polish(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Equal(t, "Hello, world.", got.PolishedText)
	assert.Equal(t, "Greeting.", got.Summary)
	assert.Equal(t, []string{"greeting"}, got.Keywords)
}

func TestBackend_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind remote.Kind
		wantMsg  string
	}{
		{"status", http.StatusServiceUnavailable, "", remote.KindService, "LLM Service Error: 503 Service Unavailable"},
		{"unsuccessful", http.StatusOK, `{"success":false,"error":"LLM not configured"}`, remote.KindService, "LLM not configured"},
		{"bad json", http.StatusOK, `{`, remote.KindParse, "Failed to parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewBackend(config.PolisherConfig{BaseURL: srv.URL}, logger.Nop()).Polish(context.Background(), "x")

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, remote.KindOf(err))
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantMsg), err.Error())
		})
	}
}

func TestNew_Provider(t *testing.T) {
	p, err := New(config.PolisherConfig{Provider: config.ProviderMock}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &mockPolisher{}, p)

	p, err = New(config.PolisherConfig{Provider: config.ProviderBackend, BaseURL: "http://x"}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &implBackend{}, p)

	_, err = New(config.PolisherConfig{Provider: "openai"}, logger.Nop())
	assert.Error(t, err)
}

func TestMock(t *testing.T) {
	got, err := NewMock(0).Polish(context.Background(), "so um, this is uh the demo")
	require.NoError(t, err)
	assert.Equal(t, "so this is the demo", got.PolishedText)
	assert.NotEmpty(t, got.Summary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewMock(time.Second).Polish(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
