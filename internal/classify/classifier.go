// Package classify turns a staged artifact into classification text.
package classify

import (
	"context"
	"errors"

	"potholeai/internal/artifact"
)

// ErrClassificationFailed wraps every failure of the classification step.
// Details are for logs; callers only see that classification failed.
var ErrClassificationFailed = errors.New("classification failed")

// Result is the opaque text produced for one artifact.
type Result struct {
	Text   string
	Cached bool
}

// Classifier produces a Result for an artifact. Implementations must be safe
// for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, a artifact.Artifact) (Result, error)
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context, a artifact.Artifact) (Result, error)

func (f Func) Classify(ctx context.Context, a artifact.Artifact) (Result, error) {
	return f(ctx, a)
}
