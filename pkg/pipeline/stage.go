package pipeline

import (
	"context"
	"time"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// stage holds what every derived pull needs: its parent pull and the hooks to report to.
// A stage is closed for good after its upstream is exhausted or after the first failure.
type stage[I any] struct {
	upstream Puller[I]
	rt       *runtime
	parent   *model.StageInfo
	info     *model.StageInfo
	done     bool
}

func newStage[I any](upstream Puller[I], rt *runtime, parent, info *model.StageInfo) stage[I] {
	return stage[I]{
		upstream: upstream,
		rt:       rt,
		parent:   parent,
		info:     info,
	}
}

func (s *stage[I]) pull(ctx context.Context) (I, bool, error) {
	var zero I
	if s.done {
		return zero, false, nil
	}

	item, ok, err := s.upstream.Next(ctx)
	if err != nil || !ok {
		s.done = true

		return zero, false, err
	}

	return item, true, nil
}

// fail closes the stage and releases its upstream, which will not be pulled again.
func (s *stage[I]) fail(err error) error {
	s.release()

	return err
}

func (s *stage[I]) release() {
	s.done = true
	releasePuller(s.upstream)
}

// emit reports one output of the stage. start is when the current Next call began.
func (s *stage[I]) emit(start time.Time, computation time.Duration) error {
	if !s.rt.observed() {
		return nil
	}

	err := s.rt.onStageOutput(s.parent, s.info, time.Since(start)-computation, computation)
	if err != nil {
		return s.fail(err)
	}

	return nil
}

type sourceStage[T any] struct {
	stage[T]
}

func (s *sourceStage[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	start := time.Now()

	item, ok, err := s.pull(ctx)
	if !ok {
		return zero, false, err
	}

	err = s.emit(start, 0)
	if err != nil {
		return zero, false, err
	}

	return item, true, nil
}

type mapStage[I, O any] struct {
	stage[I]
	mapper func(context.Context, I) (O, error)
}

func (s *mapStage[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O

	start := time.Now()

	item, ok, err := s.pull(ctx)
	if !ok {
		return zero, false, err
	}

	startFn := time.Now()

	out, err := s.mapper(ctx, item)
	if err != nil {
		return zero, false, s.fail(err)
	}

	err = s.emit(start, time.Since(startFn))
	if err != nil {
		return zero, false, err
	}

	return out, true, nil
}

type filterStage[T any] struct {
	stage[T]
	predicate func(context.Context, T) (bool, error)
}

func (s *filterStage[T]) Next(ctx context.Context) (T, bool, error) {
	var (
		zero        T
		computation time.Duration
	)

	start := time.Now()

	for {
		item, ok, err := s.pull(ctx)
		if !ok {
			return zero, false, err
		}

		startFn := time.Now()
		keep, err := s.predicate(ctx, item)
		computation += time.Since(startFn)

		if err != nil {
			return zero, false, s.fail(err)
		}

		if !keep {
			continue
		}

		err = s.emit(start, computation)
		if err != nil {
			return zero, false, err
		}

		return item, true, nil
	}
}

type flatMapStage[I, O any] struct {
	stage[I]
	mapper func(context.Context, I) (any, error)
	// current is the nested sequence being drained.
	current Puller[O]
}

func (s *flatMapStage[I, O]) Next(ctx context.Context) (O, bool, error) {
	var (
		zero        O
		computation time.Duration
	)

	start := time.Now()

	for {
		if s.current != nil {
			item, ok, err := s.current.Next(ctx)
			if err != nil {
				s.current = nil

				return zero, false, s.fail(err)
			}

			if ok {
				err = s.emit(start, computation)
				if err != nil {
					s.release()

					return zero, false, err
				}

				return item, true, nil
			}

			s.current = nil
		}

		in, ok, err := s.pull(ctx)
		if !ok {
			return zero, false, err
		}

		startFn := time.Now()
		mapped, err := s.mapper(ctx, in)
		computation += time.Since(startFn)

		if err != nil {
			return zero, false, s.fail(err)
		}

		// results that are neither async nor sync iterable produce nothing
		s.current = nestedPuller[O](mapped)
	}
}

func (s *flatMapStage[I, O]) dropCurrent() {
	releasePuller(s.current)
	s.current = nil
}

func (s *flatMapStage[I, O]) release() {
	s.dropCurrent()
	s.stage.release()
}

func nestedPuller[O any](mapped any) Puller[O] {
	if pull, ok := asyncPuller[O](mapped); ok {
		return pull
	}

	if pull, ok := iterablePuller[O](mapped); ok {
		return pull
	}

	return nil
}

// Map applies mapper to every item, in order.
func Map[T, U any](p *Pipeline[T], mapper func(context.Context, T) (U, error)) *Pipeline[U] {
	return derive(p, model.MapStageKind, mapper != nil, func(s stage[T]) Puller[U] {
		return &mapStage[T, U]{stage: s, mapper: mapper}
	})
}

// FlatMap applies mapper to every item and yields the elements of each result one by one.
//
// The result of mapper is drained before the next item is pulled. It can be a Puller[U],
// a channel of U, a *Pipeline[U], a []U, an iter.Seq[U] or an iter.Seq2[U, error].
// Any other result, nil included, yields nothing for that item.
func FlatMap[T, U any](p *Pipeline[T], mapper func(context.Context, T) (any, error)) *Pipeline[U] {
	return derive(p, model.FlatMapStageKind, mapper != nil, func(s stage[T]) Puller[U] {
		return &flatMapStage[T, U]{stage: s, mapper: mapper}
	})
}

// Filter keeps the items for which predicate returns true.
func Filter[T any](p *Pipeline[T], predicate func(context.Context, T) (bool, error)) *Pipeline[T] {
	return derive(p, model.FilterStageKind, predicate != nil, func(s stage[T]) Puller[T] {
		return &filterStage[T]{stage: s, predicate: predicate}
	})
}

// Filter keeps the items for which predicate returns true.
func (p *Pipeline[T]) Filter(predicate func(context.Context, T) (bool, error)) *Pipeline[T] {
	return Filter(p, predicate)
}
