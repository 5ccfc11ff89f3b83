package pipeline

import (
	"context"
	"iter"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// drain pulls every item of p and hands it to sinkFn, one at a time.
// Errors from the chain or from sinkFn are returned as is.
func drain[T any](ctx context.Context, pipe *Pipeline[T], name string, sinkFn func(ctx context.Context, input T) error) error {
	if pipe == nil {
		return ErrPipelineMustBeSet
	}

	if pipe.err != nil {
		return pipe.err
	}

	if pipe.pull == nil || pipe.rt == nil {
		return ErrPipelineMustBeSet
	}

	sink := pipe.rt.newStage(model.SinkStageKind, name)

	err := pipe.rt.prepareStage(pipe.stage, sink)
	if err != nil {
		return err
	}

	start := time.Now()

	err = consume(ctx, pipe, sink, sinkFn)
	if err != nil {
		// the chain stopped before its source ran dry
		releasePuller(pipe.pull)
	}

	if errors.Is(err, errStopIteration) {
		err = nil
	}

	hookErr := pipe.rt.afterSink(sink, time.Since(start), err)
	if err != nil {
		return err
	}

	if hookErr != nil {
		return hookErr
	}

	return pipe.rt.finish()
}

func consume[T any](ctx context.Context, pipe *Pipeline[T], sink *model.StageInfo, sinkFn func(ctx context.Context, input T) error) error {
	for {
		startIter := time.Now()

		item, ok, err := pipe.pull.Next(ctx)
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		endIter := time.Since(startIter)
		startFn := time.Now()

		err = sinkFn(ctx, item)
		if err != nil {
			return err
		}

		if pipe.rt.observed() {
			err = pipe.rt.onStageOutput(pipe.stage, sink, endIter, time.Since(startFn))
			if err != nil {
				return err
			}
		}
	}
}

// ForEach calls action for every item, waiting for each call before pulling the next item.
func (p *Pipeline[T]) ForEach(ctx context.Context, action func(context.Context, T) error) error {
	if action == nil {
		return ErrFuncMustBeSet
	}

	return drain(ctx, p, "for_each", action)
}

// ToSlice collects every item in arrival order.
func (p *Pipeline[T]) ToSlice(ctx context.Context) ([]T, error) {
	res := []T{}

	err := drain(ctx, p, "to_slice", func(_ context.Context, input T) error {
		res = append(res, input)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Reduce folds every item into an accumulator starting at initial.
func Reduce[T, U any](ctx context.Context, p *Pipeline[T], reducer func(context.Context, U, T) (U, error), initial U) (U, error) {
	if reducer == nil {
		return initial, ErrFuncMustBeSet
	}

	acc := initial

	err := drain(ctx, p, "reduce", func(ctx context.Context, input T) error {
		next, err := reducer(ctx, acc, input)
		if err != nil {
			return err
		}

		acc = next

		return nil
	})
	if err != nil {
		var zero U

		return zero, err
	}

	return acc, nil
}

// All returns an iterator over the items of the pipeline.
// Breaking out of the loop stops pulling. A failure is yielded once, as the last pair.
func (p *Pipeline[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		err := drain(ctx, p, "all", func(_ context.Context, input T) error {
			if !yield(input, nil) {
				return errStopIteration
			}

			return nil
		})
		if err != nil {
			var zero T

			yield(zero, err)
		}
	}
}
