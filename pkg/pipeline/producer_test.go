package pipeline_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
)

func TestFromProducer(t *testing.T) {
	t.Parallel()

	var started atomic.Bool

	pipe, err := pipeline.FromProducer(func(ctx context.Context, output chan<- int) error {
		started.Store(true)

		for i := range 10 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case output <- i:
			}
		}

		return nil
	})
	require.NoError(t, err)
	assert.False(t, started.Load())

	got, err := pipe.ToSlice(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
	assert.True(t, started.Load())
}

func TestFromProducerError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.FromProducer(func(ctx context.Context, output chan<- int) error {
		for i := range 3 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case output <- i:
			}
		}

		return assert.AnError
	})
	require.NoError(t, err)

	got := []int{}
	err = pipe.ForEach(t.Context(), func(_ context.Context, n int) error {
		got = append(got, n)

		return nil
	})
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestFromProducerCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	pipe, err := pipeline.FromProducer(func(ctx context.Context, output chan<- int) error {
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case output <- i:
			}
		}
	})
	require.NoError(t, err)

	err = pipe.ForEach(ctx, func(_ context.Context, n int) error {
		if n == 5 {
			cancel()
		}

		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFromProducerNil(t *testing.T) {
	t.Parallel()

	_, err := pipeline.FromProducer[int](nil)
	require.ErrorIs(t, err, pipeline.ErrFuncMustBeSet)
}

func TestFromChannel(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.From[int](createInputChan(t, 5))
	require.NoError(t, err)

	squares := pipeline.Map(pipe, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})

	got, err := squares.ToSlice(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4, 9, 16}, got)
}

func TestFromProducerReleasedOnFailure(t *testing.T) {
	t.Parallel()

	stopped := make(chan struct{})

	pipe, err := pipeline.FromProducer(func(ctx context.Context, output chan<- int) error {
		defer close(stopped)

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case output <- i:
			}
		}
	})
	require.NoError(t, err)

	failing := pipeline.Map(pipe, func(_ context.Context, n int) (int, error) {
		if n == 1 {
			return 0, assert.AnError
		}

		return n, nil
	})

	_, err = failing.ToSlice(context.Background())
	require.ErrorIs(t, err, assert.AnError)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("producer is still running")
	}
}

func TestFromProducerReleasedOnBreak(t *testing.T) {
	t.Parallel()

	stopped := make(chan struct{})

	pipe, err := pipeline.FromProducer(func(ctx context.Context, output chan<- int) error {
		defer close(stopped)

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case output <- i:
			}
		}
	}, newRecordingOption())
	require.NoError(t, err)

	for n, err := range pipe.All(context.Background()) {
		require.NoError(t, err)

		if n == 3 {
			break
		}
	}

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("producer is still running")
	}
}
