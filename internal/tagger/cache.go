package tagger

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes another tagger. Taggers are pure functions of the span,
// and TEI text repeats short spans (punctuation tails, formulae) heavily.
type Cached struct {
	inner Tagger
	cache *lru.Cache[string, []Analysis]
}

func NewCached(inner Tagger, size int) (*Cached, error) {
	c, err := lru.New[string, []Analysis](size)
	if err != nil {
		return nil, fmt.Errorf("tagger cache: %w", err)
	}
	return &Cached{inner: inner, cache: c}, nil
}

func (c *Cached) Tag(ctx context.Context, text string) ([]Analysis, error) {
	if v, ok := c.cache.Get(text); ok {
		return clone(v), nil
	}
	v, err := c.inner.Tag(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, clone(v))
	return v, nil
}

// Len reports the number of cached spans.
func (c *Cached) Len() int { return c.cache.Len() }

func clone(v []Analysis) []Analysis {
	return append([]Analysis(nil), v...)
}
