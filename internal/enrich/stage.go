// Package enrich provides a small, generic pipeline abstraction that runs
// independent steps in parallel within a stage, while enforcing sequential
// execution between stages. The media prefetcher uses a single stage of two
// steps, one per media chain, and relies on the stage barrier as its join.
package enrich

import (
	"context"
)

// Step represents a single operation that mutates the given item.
// Implementations should be safe to run concurrently with other steps in the
// same stage operating on the same item. If a step fails it should return an
// error; the pipeline will log the error and continue.
// The context can be used to observe cancellation or timeouts.
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups a set of steps that are safe to execute in parallel for a
// single item. All steps in a stage are started together, and the pipeline
// waits for them to complete before moving to the next stage.
//
// Note: Step functions must coordinate on shared fields if they might write to
// the same location concurrently.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs an unnamed Stage from the provided steps.
func NewStage[T any](steps ...Step[T]) Stage[T] {
	return Stage[T]{steps: steps}
}

// NamedStage is NewStage with a name used in failure logs.
func NamedStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}
