// Package config loads service configuration from an optional YAML file and
// the environment, with sane defaults for local development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix scopes the environment variables read into the configuration,
// e.g. PII_SERVER_LISTEN maps to server.listen
const envPrefix = "PII_"

// Config holds service configuration
type Config struct {
	Server   Server   `koanf:"server"`
	Notion   Notion   `koanf:"notion"`
	Detector Detector `koanf:"detector"`
	Slack    Slack    `koanf:"slack"`
	Extract  Extract  `koanf:"extract"`
	Dispatch Dispatch `koanf:"dispatch"`
}

// Server holds the HTTP server settings
type Server struct {
	// Listen is the address the webhook server binds to
	Listen string `koanf:"listen"`
	// ReadTimeout bounds request reads
	ReadTimeout time.Duration `koanf:"readtimeout"`
	// WriteTimeout bounds response writes
	WriteTimeout time.Duration `koanf:"writetimeout"`
	// ShutdownGracePeriod bounds graceful shutdown on termination
	ShutdownGracePeriod time.Duration `koanf:"shutdowngraceperiod"`
	// WebhookSecret verifies webhook delivery signatures; empty disables
	// verification
	WebhookSecret string `koanf:"webhooksecret"`
	// Debug enables debug logging
	Debug bool `koanf:"debug"`
	// Pretty enables human readable logging output
	Pretty bool `koanf:"pretty"`
}

// Notion holds the workspace API client settings
type Notion struct {
	// Token is the integration token
	Token string `koanf:"token"`
	// BaseURL overrides the API endpoint, for testing
	BaseURL string `koanf:"baseurl"`
	// RequestTimeout bounds each API call
	RequestTimeout time.Duration `koanf:"requesttimeout"`
	// MaxRetries bounds transient retry attempts per call
	MaxRetries uint64 `koanf:"maxretries"`
}

// Detector holds the AI detection backend settings
type Detector struct {
	// AccountID is the Cloudflare account identifier
	AccountID string `koanf:"accountid"`
	// APIToken authenticates Workers AI calls
	APIToken string `koanf:"apitoken"`
	// BaseURL overrides the API endpoint, for testing
	BaseURL string `koanf:"baseurl"`
	// RequestTimeout bounds each analysis call
	RequestTimeout time.Duration `koanf:"requesttimeout"`
}

// Slack holds the notification client settings
type Slack struct {
	// BotToken authenticates Web API calls; empty disables notifications
	BotToken string `koanf:"bottoken"`
	// RequestTimeout bounds each API call
	RequestTimeout time.Duration `koanf:"requesttimeout"`
}

// Extract holds the block traversal bounds
type Extract struct {
	// MaxDepth bounds nested block resolution depth
	MaxDepth int `koanf:"maxdepth"`
	// MaxBlocks bounds total blocks resolved per page
	MaxBlocks int `koanf:"maxblocks"`
	// MaxPageDepth bounds recursion into nested child pages
	MaxPageDepth int `koanf:"maxpagedepth"`
}

// Dispatch holds the job queue settings
type Dispatch struct {
	// Workers is the processing pool size
	Workers int `koanf:"workers"`
	// QueueSize is the job buffer capacity
	QueueSize int `koanf:"queuesize"`
	// DedupWindow is how long repeat events for the same page, author and
	// delivery are dropped
	DedupWindow time.Duration `koanf:"dedupwindow"`
}

// Load reads configuration from the given YAML file (when it exists) and the
// environment, layered over defaults. Environment values win.
func Load(path *string) (*Config, error) {
	k := koanf.New(".")
	cfg := defaults()

	if path != nil && *path != "" {
		if _, err := os.Stat(*path); err == nil {
			if err := k.Load(file.Provider(*path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	return cfg, nil
}

// envKey maps PII_SERVER_LISTEN to server.listen
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
}

// defaults returns the configuration used when no file or environment
// overrides are present
func defaults() *Config {
	return &Config{
		Server: Server{
			Listen:              ":8080",
			ReadTimeout:         30 * time.Second,
			WriteTimeout:        30 * time.Second,
			ShutdownGracePeriod: 10 * time.Second,
		},
		Notion: Notion{
			RequestTimeout: 15 * time.Second,
			MaxRetries:     2,
		},
		Detector: Detector{
			RequestTimeout: 30 * time.Second,
		},
		Slack: Slack{
			RequestTimeout: 10 * time.Second,
		},
		Extract: Extract{
			MaxDepth:     10,
			MaxBlocks:    2000,
			MaxPageDepth: 5,
		},
		Dispatch: Dispatch{
			Workers:     4,
			QueueSize:   256,
			DedupWindow: 30 * time.Second,
		},
	}
}
