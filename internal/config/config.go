package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything kbchat reads from its config file.
type Config struct {
	APIURL         string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	ChatTimeout    time.Duration
	LogFile        string
	LogLevel       string
}

const (
	defaultConfigPath     = "~/.config/kbchat/config.toml"
	defaultLogFile        = "~/.local/share/kbchat/kbchat.log"
	defaultAPIURL         = "http://127.0.0.1:8000"
	defaultLogLevel       = "info"
	defaultPollInterval   = 2 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultChatTimeout    = 2 * time.Minute
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
		ChatTimeout:    defaultChatTimeout,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
	}
}

// Load locates and parses the kbchat config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		PollInterval   string `toml:"poll_interval"`
		RequestTimeout string `toml:"request_timeout"`
		ChatTimeout    string `toml:"chat_timeout"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}

	durations := []struct {
		name string
		raw  string
		dest *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
		{"chat_timeout", raw.ChatTimeout, &cfg.ChatTimeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.name, d.raw, d.dest); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// parseDuration leaves dest untouched for blank values.
func parseDuration(name, raw string, dest *time.Duration) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s must be positive, got %s", name, trimmed)
	}
	*dest = d
	return nil
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
