package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// FromProducer creates a pipeline fed by producer, which runs in its own goroutine.
//
// The producer starts on the first pull, with a context derived from the one given to that pull.
// It must stop sending when its context is done. Its error is reported once the output is drained.
// The context is cancelled when the pipeline stops before the producer returns.
func FromProducer[T any](producer func(ctx context.Context, output chan<- T) error, opts ...model.PipelineOption) (*Pipeline[T], error) {
	if producer == nil {
		return nil, ErrFuncMustBeSet
	}

	return From[T](&producerPuller[T]{producer: producer}, opts...)
}

type producerPuller[T any] struct {
	producer func(ctx context.Context, output chan<- T) error
	errGrp   *errgroup.Group
	cancel   context.CancelFunc
	output   chan T
	done     bool
}

func (p *producerPuller[T]) start(ctx context.Context) {
	cCtx, cancel := context.WithCancel(ctx)
	errGrp, dCtx := errgroup.WithContext(cCtx)
	output := make(chan T)

	errGrp.Go(func() error {
		defer close(output)

		return p.producer(dCtx, output)
	})

	p.errGrp = errGrp
	p.cancel = cancel
	p.output = output
}

func (p *producerPuller[T]) release() {
	p.done = true
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *producerPuller[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if p.done {
		return zero, false, nil
	}

	if p.errGrp == nil {
		p.start(ctx)
	}

	select {
	case <-ctx.Done():
		p.release()

		return zero, false, ctx.Err()
	case item, ok := <-p.output:
		if ok {
			return item, true, nil
		}

		err := p.errGrp.Wait()
		p.release()

		return zero, false, err
	}
}
