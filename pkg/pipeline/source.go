package pipeline

import (
	"context"
	"iter"

	"github.com/pkg/errors"
)

// Puller is a single-use cursor over a sequence.
// Next returns (item, true, nil) for every item, then (zero, false, nil) once exhausted.
// A non-nil error aborts the sequence.
type Puller[T any] interface {
	Next(ctx context.Context) (T, bool, error)
}

// PullerFunc adapts a function to a Puller.
type PullerFunc[T any] func(ctx context.Context) (T, bool, error)

func (f PullerFunc[T]) Next(ctx context.Context) (T, bool, error) {
	return f(ctx)
}

// StepResult is what a Stepper produces on each call. Value is ignored when Done is set.
type StepResult[T any] struct {
	Value T
	Done  bool
}

// Stepper is a raw cursor that reports its own end of sequence.
type Stepper[T any] interface {
	Step(ctx context.Context) (StepResult[T], error)
}

// StepperFunc adapts a function to a Stepper.
type StepperFunc[T any] func(ctx context.Context) (StepResult[T], error)

func (f StepperFunc[T]) Step(ctx context.Context) (StepResult[T], error) {
	return f(ctx)
}

type sourceKind int

const (
	invalidSourceKind sourceKind = iota
	pullSourceKind
	iterableSourceKind
	stepperSourceKind
)

func (k sourceKind) String() string {
	switch k {
	case pullSourceKind:
		return "pull"
	case iterableSourceKind:
		return "iterable"
	case stepperSourceKind:
		return "stepper"
	default:
		return "invalid"
	}
}

// Normalize turns any supported source into a Puller.
//
// The input is classified once, in this order:
//   - a Puller, a func(context.Context) (T, bool, error) or a receive channel is an async source.
//     A Puller is returned as is.
//   - a slice, an iter.Seq or an iter.Seq2[T, error] is a sync source.
//   - a Stepper or a func(context.Context) (StepResult[T], error) is a stepper source.
//
// Any other input fails with ErrInvalidSourceKind. Nothing is pulled from the input.
func Normalize[T any](input any) (Puller[T], error) {
	kind, pull := classify[T](input)
	if kind == invalidSourceKind {
		return nil, errors.Wrapf(ErrInvalidSourceKind, "unable to normalize %T", input)
	}

	return pull, nil
}

func classify[T any](input any) (sourceKind, Puller[T]) {
	if pull, ok := asyncPuller[T](input); ok {
		return pullSourceKind, pull
	}

	if pull, ok := iterablePuller[T](input); ok {
		return iterableSourceKind, pull
	}

	if pull, ok := stepperPuller[T](input); ok {
		return stepperSourceKind, pull
	}

	return invalidSourceKind, nil
}

func asyncPuller[T any](input any) (Puller[T], bool) {
	switch src := input.(type) {
	case Puller[T]:
		return src, true
	case func(context.Context) (T, bool, error):
		return PullerFunc[T](src), true
	case *Pipeline[T]:
		return src.Puller(), true
	case <-chan T:
		return &chanPuller[T]{c: src}, true
	case chan T:
		return &chanPuller[T]{c: src}, true
	}

	return nil, false
}

func iterablePuller[T any](input any) (Puller[T], bool) {
	switch src := input.(type) {
	case []T:
		return &slicePuller[T]{items: src}, true
	case iter.Seq[T]:
		return &seqPuller[T]{seq: src}, true
	case func(func(T) bool):
		return &seqPuller[T]{seq: src}, true
	case iter.Seq2[T, error]:
		return &seq2Puller[T]{seq: src}, true
	case func(func(T, error) bool):
		return &seq2Puller[T]{seq: src}, true
	}

	return nil, false
}

func stepperPuller[T any](input any) (Puller[T], bool) {
	switch src := input.(type) {
	case Stepper[T]:
		return &stepPuller[T]{stepper: src}, true
	case func(context.Context) (StepResult[T], error):
		return &stepPuller[T]{stepper: StepperFunc[T](src)}, true
	}

	return nil, false
}

// releaser is implemented by pullers holding resources that must be freed when abandoned early.
type releaser interface {
	release()
}

// releasePuller frees what p holds upstream. Pullers without resources are left as they are.
func releasePuller[T any](p Puller[T]) {
	if r, ok := p.(releaser); ok {
		r.release()
	}
}

type slicePuller[T any] struct {
	items []T
	index int
}

func (p *slicePuller[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if p.index >= len(p.items) {
		return zero, false, nil
	}

	item := p.items[p.index]
	p.index++

	return item, true, nil
}

type seqPuller[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
	done bool
}

func (p *seqPuller[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if p.done {
		return zero, false, nil
	}

	if p.next == nil {
		p.next, p.stop = iter.Pull(p.seq)
	}

	item, ok := p.next()
	if !ok {
		p.release()

		return zero, false, nil
	}

	return item, true, nil
}

func (p *seqPuller[T]) release() {
	p.done = true
	if p.stop != nil {
		p.stop()
	}
}

type seq2Puller[T any] struct {
	seq  iter.Seq2[T, error]
	next func() (T, error, bool)
	stop func()
	done bool
}

func (p *seq2Puller[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if p.done {
		return zero, false, nil
	}

	if p.next == nil {
		p.next, p.stop = iter.Pull2(p.seq)
	}

	item, err, ok := p.next()
	if !ok {
		p.release()

		return zero, false, nil
	}

	if err != nil {
		p.release()

		return zero, false, err
	}

	return item, true, nil
}

func (p *seq2Puller[T]) release() {
	p.done = true
	if p.stop != nil {
		p.stop()
	}
}

type chanPuller[T any] struct {
	c    <-chan T
	done bool
}

func (p *chanPuller[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.done {
		return zero, false, nil
	}

	select {
	case <-ctx.Done():
		p.done = true

		return zero, false, ctx.Err()
	case item, ok := <-p.c:
		if !ok {
			p.done = true

			return zero, false, nil
		}

		return item, true, nil
	}
}

type stepPuller[T any] struct {
	stepper Stepper[T]
	done    bool
}

func (p *stepPuller[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.done {
		return zero, false, nil
	}

	res, err := p.stepper.Step(ctx)
	if err != nil {
		p.done = true

		return zero, false, err
	}

	if res.Done {
		p.done = true

		return zero, false, nil
	}

	return res.Value, true, nil
}

// errPuller fails on the first pull and is exhausted afterwards.
type errPuller[T any] struct {
	err error
}

func (p *errPuller[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	err := p.err
	p.err = nil

	return zero, false, err
}
