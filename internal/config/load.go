package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, also read from a .env file next to the binary.
const (
	EnvBackendURL  = "SONOTE_BACKEND_URL"
	EnvGeminiKeys  = "GEMINI_API_KEYS"
	EnvMock        = "SONOTE_MOCK"
	EnvLogLevel    = "SONOTE_LOG_LEVEL"
	EnvEnvFilePath = "SONOTE_ENV_FILE"
)

// Load reads the YAML file at path, applies environment overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := loadEnvFile(); err != nil {
		return nil, err
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env (or $SONOTE_ENV_FILE) without overriding the real environment.
func loadEnvFile() error {
	path := os.Getenv(EnvEnvFilePath)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Transcriber.BaseURL = v
		if cfg.Polisher.Provider == "" || cfg.Polisher.Provider == ProviderBackend {
			cfg.Polisher.BaseURL = v
		}
	}
	if v := os.Getenv(EnvGeminiKeys); v != "" {
		var keys []string
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		cfg.Polisher.APIKeys = keys
	}
	if v := os.Getenv(EnvMock); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Mock = b
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}
