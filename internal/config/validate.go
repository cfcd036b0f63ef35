package config

import (
	"errors"
	"fmt"

	"github.com/dgallion1/diccas/internal/segment"
)

var (
	ErrInvalidSplitPolicy = errors.New("invalid split_policy")
	ErrInvalidTagger      = errors.New("invalid tagger configuration")
	ErrMissingAPIKey      = errors.New("api_key is required")
)

// Validate checks the settings every entry point depends on.
func (c *Config) Validate() error {
	if _, err := segment.ParsePolicy(c.SplitPolicy); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSplitPolicy, c.SplitPolicy)
	}
	switch c.Tagger.Kind {
	case TaggerRule:
	case TaggerLexicon:
		if c.Tagger.LexiconPath == "" {
			return fmt.Errorf("%w: lexicon tagger needs tagger.lexicon_path", ErrInvalidTagger)
		}
	case TaggerHTTP:
		if c.Tagger.URL == "" {
			return fmt.Errorf("%w: http tagger needs tagger.url", ErrInvalidTagger)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTagger, c.Tagger.Kind)
	}
	if c.Tagger.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must be >= 0 (got %d)", ErrInvalidTagger, c.Tagger.CacheSize)
	}
	if c.Output.Name == "" {
		return fmt.Errorf("output.name must not be empty")
	}
	return nil
}

// ValidateServer adds the requirements of the HTTP service.
func (c *Config) ValidateServer() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker_count must be > 0 (got %d)", c.WorkerCount)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max_queue_size must be > 0 (got %d)", c.MaxQueueSize)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0 (got %d)", c.MaxUploadBytes)
	}
	return nil
}

// Policy returns the validated sentence policy.
func (c *Config) Policy() segment.Policy {
	p, _ := segment.ParsePolicy(c.SplitPolicy)
	return p
}
