package transcriber

import (
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

// DefaultTimeout bounds one upload + transcription round trip.
const DefaultTimeout = 300 * time.Second

type implTranscriber struct {
	endpoint string
	client   *http.Client
	logger   logger.Logger
}

// New creates an HTTP Transcriber posting to {base_url}/transcribe.
func New(cfg config.TranscriberConfig, log logger.Logger) Transcriber {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &implTranscriber{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/transcribe",
		client:   &http.Client{Timeout: timeout},
		logger:   log,
	}
}
