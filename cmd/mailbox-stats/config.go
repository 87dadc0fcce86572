package main

import (
	"errors"

	"github.com/clearsignals/clearsignals/signals"
)

type Config struct {
	InPath string
	Owner  string

	MaxContacts          int
	MaxThreadsPerContact int
	MaxMessagesPerThread int

	Verbose bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
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
		MaxContacts:          limits.MaxContacts,
		MaxThreadsPerContact: limits.MaxThreadsPerContact,
		MaxMessagesPerThread: limits.MaxMessagesPerThread,
	}
}
