package pipeline

import (
	"context"
	"testing"
)

func drainPuller[T any](t *testing.T, ctx context.Context, pull Puller[T]) ([]T, error) {
	t.Helper()

	res := []T{}

	for {
		item, ok, err := pull.Next(ctx)
		if err != nil {
			return res, err
		}

		if !ok {
			return res, nil
		}

		res = append(res, item)
	}
}
