package util

import (
	"context"
	"errors"
)

// RetryWithContext runs fn until it succeeds, attempts run out or ctx ends.
// At least one attempt is made. Context errors, whether from ctx or returned
// by fn, stop the loop at once; otherwise the last failure is returned.
func RetryWithContext[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var err error
	for n := 0; n < max(attempts, 1); n++ {
		if cerr := ctx.Err(); cerr != nil {
			return zero, cerr
		}
		var v T
		if v, err = fn(ctx); err == nil {
			return v, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
	}
	return zero, err
}
