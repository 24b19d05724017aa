package classify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"potholeai/internal/artifact"
)

// ResultCache stores classification text by artifact fingerprint.
type ResultCache interface {
	Lookup(ctx context.Context, fingerprint string) (string, bool, error)
	Store(ctx context.Context, fingerprint, text string, ttl time.Duration) error
}

// Cached short-circuits the wrapped classifier for byte-identical images.
// Cache failures are logged and never fail the classification.
type Cached struct {
	next  Classifier
	cache ResultCache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCached(next Classifier, cache ResultCache, ttl time.Duration, log zerolog.Logger) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *Cached) Classify(ctx context.Context, a artifact.Artifact) (Result, error) {
	if a.Fingerprint != "" {
		text, ok, err := c.cache.Lookup(ctx, a.Fingerprint)
		switch {
		case err != nil:
			c.log.Warn().Err(err).Str("artifact_id", a.ID).Msg("prediction cache lookup failed")
		case ok:
			return Result{Text: text, Cached: true}, nil
		}
	}

	result, err := c.next.Classify(ctx, a)
	if err != nil {
		return Result{}, err
	}

	if a.Fingerprint != "" {
		if err := c.cache.Store(ctx, a.Fingerprint, result.Text, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("artifact_id", a.ID).Msg("prediction cache store failed")
		}
	}
	return result, nil
}
