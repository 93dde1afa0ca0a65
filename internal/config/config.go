// Package config loads server settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/codepix/codepix/internal/httpclient"
	"github.com/codepix/codepix/internal/metadata"
	"github.com/joho/godotenv"
)

const (
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGroqAPIKey     = "GROQ_API_KEY"
	EnvAddr           = "CODEPIX_ADDR"
	EnvGeminiModel    = "CODEPIX_GEMINI_MODEL"
	EnvGroqModel      = "CODEPIX_GROQ_MODEL"
	EnvGroqBaseURL    = "CODEPIX_GROQ_BASE_URL"
	EnvCORSOrigins    = "CODEPIX_CORS_ORIGINS"
	EnvLogLevel       = "CODEPIX_LOG_LEVEL"
	EnvLogFormat      = "CODEPIX_LOG_FORMAT"
	EnvRequestTimeout = "CODEPIX_REQUEST_TIMEOUT"

	DefaultAddr            = ":5000"
	DefaultShutdownTimeout = 10 * time.Second
	LogFormatPretty        = "pretty"
	LogFormatJSON          = "json"
)

// DefaultCORSOrigins are the browser origins of the hosted frontend.
var DefaultCORSOrigins = []string{
	"https://codepix.live",
	"http://codepix.live",
	"https://www.codepix.live",
	"http://www.codepix.live",
}

type Config struct {
	Addr            string
	GeminiAPIKey    string
	GroqAPIKey      string
	GeminiModel     string
	GroqModel       string
	GroqBaseURL     string
	CORSOrigins     []string
	LogLevel        slog.Level
	LogFormat       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and then builds a Config from it. Missing files are
// ignored; variables already set in the environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:            envOr(EnvAddr, DefaultAddr),
		GeminiAPIKey:    strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)),
		GroqAPIKey:      strings.TrimSpace(os.Getenv(EnvGroqAPIKey)),
		GeminiModel:     envOr(EnvGeminiModel, metadata.DefaultGeminiModel),
		GroqModel:       envOr(EnvGroqModel, metadata.DefaultGroqModel),
		GroqBaseURL:     envOr(EnvGroqBaseURL, ""),
		CORSOrigins:     DefaultCORSOrigins,
		LogLevel:        slog.LevelInfo,
		LogFormat:       envOr(EnvLogFormat, LogFormatPretty),
		RequestTimeout:  httpclient.DefaultTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	if v := os.Getenv(EnvCORSOrigins); v != "" {
		cfg.CORSOrigins = SplitList(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		level, err := ParseLogLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q: want a positive duration such as 90s", EnvRequestTimeout, v)
		}
		cfg.RequestTimeout = d
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags may have overridden after loading.
func (c Config) Validate() error {
	switch c.LogFormat {
	case LogFormatPretty, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (supported: %s, %s)", c.LogFormat, LogFormatPretty, LogFormatJSON)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("listen address is empty")
	}
	return nil
}

// ParseLogLevel accepts debug, info, warn/warning and error in any case.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}

// SplitList splits a comma separated value, dropping empty entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
