package main

import (
	"flag"
	"testing"
	"time"
)

func TestParseFlags_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-in", "mail.mbox"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.MaxContacts != 50 || cfg.MaxThreadsPerContact != 5 || cfg.MaxMessagesPerThread != 20 {
		t.Fatalf("caps=%d/%d/%d, want 50/5/20", cfg.MaxContacts, cfg.MaxThreadsPerContact, cfg.MaxMessagesPerThread)
	}
	if cfg.RateLimitDelay != 1500*time.Millisecond {
		t.Fatalf("RateLimitDelay=%v, want 1.5s", cfg.RateLimitDelay)
	}
	if cfg.Timeout != 60*time.Second {
		t.Fatalf("Timeout=%v, want 60s", cfg.Timeout)
	}
	if cfg.BaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("BaseURL=%q", cfg.BaseURL)
	}
	if !cfg.Pretty {
		t.Fatalf("Pretty=false, want true by default")
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-in", "mail.mbox", "-out", "artifacts",
		"-model", "some/model", "-max-contacts", "3",
		"-rate-delay", "0s", "-timeout", "10s", "-owner", "me@x.com",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.OutDir != "artifacts" || cfg.Model != "some/model" || cfg.MaxContacts != 3 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.RateLimitDelay != 0 || cfg.Timeout != 10*time.Second || cfg.Owner != "me@x.com" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestConfigValidate_Rejects(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.InPath = "" },
		func(c *Config) { c.Model = "" },
		func(c *Config) { c.BaseURL = "" },
		func(c *Config) { c.MaxContacts = -1 },
		func(c *Config) { c.MaxThreadsPerContact = -1 },
		func(c *Config) { c.MaxMessagesPerThread = -1 },
		func(c *Config) { c.RateLimitDelay = -time.Second },
		func(c *Config) { c.Timeout = 0 },
	}
	for i, mutate := range cases {
		cfg := defaultConfig()
		cfg.InPath = "mail.mbox"
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: Validate accepted invalid config", i)
		}
	}
}

func TestParseFlags_RejectsPositionalArgs(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := parseFlags(fs, []string{"-in", "mail.mbox", "extra"}); err == nil {
		t.Fatalf("parseFlags accepted positional arguments")
	}
}
