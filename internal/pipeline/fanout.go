package pipeline

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// fanOut runs fn for every item with at most limit calls in flight and returns
// the results in item order. The first failure cancels the shared context and
// is returned; no partial results escape.
func fanOut[In, Out any](ctx context.Context, limit int, items []In, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	results := make([]Out, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if limit < 1 {
		limit = 1
	}

	p := pool.New().
		WithMaxGoroutines(limit).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for i, item := range items {
		p.Go(func(ctx context.Context) error {
			out, err := fn(ctx, item)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
