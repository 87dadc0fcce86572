package main

import (
	"errors"
	"time"

	"github.com/clearsignals/clearsignals/signals"
)

type Config struct {
	InPath string
	OutDir string

	Model   string
	BaseURL string
	APIKey  string

	Owner string

	MaxContacts          int
	MaxThreadsPerContact int
	MaxMessagesPerThread int

	RateLimitDelay time.Duration
	Timeout        time.Duration

	Pretty  bool
	Verbose bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.BaseURL == "" {
		return errors.New("missing -base-url")
	}
	if c.MaxContacts < 0 {
		return errors.New("max-contacts must be >= 0")
	}
	if c.MaxThreadsPerContact < 0 {
		return errors.New("max-threads must be >= 0")
	}
	if c.MaxMessagesPerThread < 0 {
		return errors.New("max-messages must be >= 0")
	}
	if c.RateLimitDelay < 0 {
		return errors.New("rate-delay must be >= 0")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	return nil
}

func (c Config) Limits() signals.Limits {
	return signals.Limits{
		MaxContacts:          c.MaxContacts,
		MaxThreadsPerContact: c.MaxThreadsPerContact,
		MaxMessagesPerThread: c.MaxMessagesPerThread,
	}
}

func defaultConfig() Config {
	limits := signals.DefaultLimits()
	return Config{
		Model:                "anthropic/claude-sonnet-4-20250514",
		BaseURL:              signals.DefaultBaseURL,
		MaxContacts:          limits.MaxContacts,
		MaxThreadsPerContact: limits.MaxThreadsPerContact,
		MaxMessagesPerThread: limits.MaxMessagesPerThread,
		RateLimitDelay:       1500 * time.Millisecond,
		Timeout:              60 * time.Second,
		Pretty:               true,
	}
}
