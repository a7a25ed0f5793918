package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Polisher    PolisherConfig    `yaml:"polisher"`
	History     HistoryConfig     `yaml:"history"`
	Intake      IntakeConfig      `yaml:"intake"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Server      ServerConfig      `yaml:"server"`
	Mock        bool              `yaml:"mock"`
}

type SchedulerConfig struct {
	ConcurrentLimit int           `yaml:"concurrent_limit"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
}

type TranscriberConfig struct {
	// Provider is "backend" (remote ASR service) or "whisper" (local whisper.cpp)
	Provider   string        `yaml:"provider"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	FFmpegPath string        `yaml:"ffmpeg_path"`
	Whisper    WhisperConfig `yaml:"whisper"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type PolisherConfig struct {
	// Provider is one of "backend", "gemini" or "mock"
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Model    string        `yaml:"model"`
	APIKeys  []string      `yaml:"api_keys"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
	// MaxItems caps retained records; 0 means 50, negative means unlimited
	MaxItems int `yaml:"max_items"`
}

type IntakeConfig struct {
	MaxFileSize     int64    `yaml:"max_file_size"`
	AllowedPrefixes []string `yaml:"allowed_prefixes"`
}

type PathsConfig struct {
	Input   string `yaml:"input"`
	Uploads string `yaml:"uploads"`
	Export  string `yaml:"export"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ServerConfig struct {
	Address string `yaml:"address"`
}

const (
	ProviderBackend = "backend"
	ProviderGemini  = "gemini"
	ProviderMock    = "mock"
	ProviderWhisper = "whisper"
)

func (c *Config) Validate() error {
	if c.Scheduler.ConcurrentLimit < 0 {
		return fmt.Errorf("scheduler.concurrent_limit must not be negative")
	}
	if c.Scheduler.SettleDelay < 0 {
		return fmt.Errorf("scheduler.settle_delay must not be negative")
	}
	if c.Intake.MaxFileSize < 0 {
		return fmt.Errorf("intake.max_file_size must not be negative")
	}

	if c.Scheduler.ConcurrentLimit == 0 {
		c.Scheduler.ConcurrentLimit = 2
	}
	if c.Transcriber.Timeout == 0 {
		c.Transcriber.Timeout = 300 * time.Second
	}
	if c.Transcriber.Provider == "" {
		c.Transcriber.Provider = ProviderBackend
	}
	if c.Transcriber.FFmpegPath == "" {
		c.Transcriber.FFmpegPath = "ffmpeg"
	}
	if c.Transcriber.Whisper.Language == "" {
		c.Transcriber.Whisper.Language = "auto"
	}
	if c.Transcriber.Whisper.Threads == 0 {
		c.Transcriber.Whisper.Threads = 8
	}
	if c.Polisher.Timeout == 0 {
		c.Polisher.Timeout = 120 * time.Second
	}
	if c.Polisher.Provider == "" {
		c.Polisher.Provider = ProviderBackend
	}
	if c.Polisher.Model == "" {
		c.Polisher.Model = "gemini-2.5-flash"
	}
	if c.Intake.MaxFileSize == 0 {
		c.Intake.MaxFileSize = 100 * 1024 * 1024
	}
	if len(c.Intake.AllowedPrefixes) == 0 {
		c.Intake.AllowedPrefixes = []string{"audio/", "video/"}
	}
	if c.History.Path == "" {
		c.History.Path = "data/history.db"
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Uploads == "" {
		c.Paths.Uploads = "data/uploads"
	}
	if c.Paths.Export == "" {
		c.Paths.Export = "data/export"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Mock {
		return nil
	}

	switch c.Polisher.Provider {
	case ProviderMock:
	case ProviderBackend:
		if c.Polisher.BaseURL == "" {
			c.Polisher.BaseURL = c.Transcriber.BaseURL
		}
		if c.Polisher.BaseURL == "" {
			return fmt.Errorf("polisher.base_url is required for the backend provider")
		}
	case ProviderGemini:
		if len(c.Polisher.APIKeys) == 0 {
			return fmt.Errorf("polisher.api_keys (or GEMINI_API_KEYS) is required for the gemini provider")
		}
	default:
		return fmt.Errorf("polisher.provider %q is not supported", c.Polisher.Provider)
	}

	switch c.Transcriber.Provider {
	case ProviderBackend:
		if c.Transcriber.BaseURL == "" {
			return fmt.Errorf("transcriber.base_url is required")
		}
	case ProviderWhisper:
		if c.Transcriber.Whisper.ModelPath == "" {
			return fmt.Errorf("transcriber.whisper.model_path is required")
		}
		if c.Transcriber.Whisper.BinaryPath == "" {
			return fmt.Errorf("transcriber.whisper.binary_path is required")
		}
	default:
		return fmt.Errorf("transcriber.provider %q is not supported", c.Transcriber.Provider)
	}
	c.Transcriber.BaseURL = strings.TrimRight(c.Transcriber.BaseURL, "/")
	c.Polisher.BaseURL = strings.TrimRight(c.Polisher.BaseURL, "/")

	return nil
}
