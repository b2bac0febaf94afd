// Package dictionary decides whether a word is a real English word.
//
// Sources report failures as errors; Dictionary collapses every failure
// into "not a word", which is all the game needs to know.
package dictionary

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_dictionary.go shiritori/internal/dictionary Lookup,Source

// Lookup answers true iff word is a dictionary entry. Any failure is false.
type Lookup interface {
	Lookup(ctx context.Context, word string) bool
}

// Source checks a word against one backend. A non-nil error means the
// backend could not answer, not that the word is unknown.
type Source interface {
	Check(ctx context.Context, word string) (bool, error)
}

// DefaultTimeout bounds a single lookup
const DefaultTimeout = 5 * time.Second

// Config holds configuration for a Dictionary
type Config struct {
	Source  Source
	Timeout time.Duration
	Logger  *slog.Logger
}

// Dictionary adapts a Source to the Lookup contract
type Dictionary struct {
	source  Source
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new dictionary
func New(cfg *Config) (*Dictionary, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Source == nil {
		return nil, errors.New("source cannot be nil")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dictionary{
		source:  cfg.Source,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Lookup implements Lookup
func (d *Dictionary) Lookup(ctx context.Context, word string) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ok, err := d.source.Check(ctx, word)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			d.logger.Debug("dictionary lookup canceled", "word", word)
		} else {
			d.logger.Warn("dictionary lookup failed", "word", word, "error", err)
		}
		return false
	}
	return ok
}

// LookupFunc lets a plain function serve as a Lookup
type LookupFunc func(ctx context.Context, word string) bool

// Lookup implements Lookup
func (f LookupFunc) Lookup(ctx context.Context, word string) bool {
	return f(ctx, word)
}
