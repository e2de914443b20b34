// Package pipeline holds the stage abstraction and the data passed between
// the stages of an encode run.
package pipeline

import (
	"context"
)

// Stage turns one input into one output.
type Stage[In, Out any] interface {
	// Execute runs the stage. Implementations stop early when ctx is done.
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc adapts a function to Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
