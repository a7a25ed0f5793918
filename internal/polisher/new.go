package polisher

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// MaxTranscriptRunes caps the transcript sent to the language model.
	MaxTranscriptRunes = 10000
)

// New builds the Polisher selected by cfg.Provider.
func New(cfg config.PolisherConfig, log logger.Logger) (Polisher, error) {
	switch cfg.Provider {
	case config.ProviderBackend, "":
		return NewBackend(cfg, log), nil
	case config.ProviderGemini:
		return NewGemini(cfg, log)
	case config.ProviderMock:
		return NewMock(0), nil
	default:
		return nil, fmt.Errorf("unknown polisher provider %q", cfg.Provider)
	}
}

type implBackend struct {
	endpoint string
	client   *http.Client
	logger   logger.Logger
}

// NewBackend creates a Polisher that posts to {base_url}/polish.
func NewBackend(cfg config.PolisherConfig, log logger.Logger) Polisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &implBackend{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/polish",
		client:   &http.Client{Timeout: timeout},
		logger:   log,
	}
}

type implGemini struct {
	apiKeys  []string
	model    string
	logger   logger.Logger
	generate generateFunc

	mu         sync.Mutex
	currentKey int
}

// NewGemini creates a Polisher that calls Gemini directly, rotating
// through the configured API keys when one is rate limited.
func NewGemini(cfg config.PolisherConfig, log logger.Logger) (Polisher, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("gemini polisher: no API keys configured")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &implGemini{
		apiKeys:  cfg.APIKeys,
		model:    model,
		logger:   log,
		generate: generateWithGenAI,
	}, nil
}
