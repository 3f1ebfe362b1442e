package utils

import (
	"context"
	"sync"
)

// Gather runs the given functions concurrently and returns one error
// slot per function, index-aligned. Panics are recovered and reported
// as PanicError; a cancelled context aborts functions that have not
// started yet.
func Gather(ctx context.Context, functions ...func() error) []error {
	if len(functions) == 0 {
		return nil
	}

	results := make([]error, len(functions))
	var wg sync.WaitGroup

	for i, fn := range functions {
		wg.Add(1)
		go func(index int, function func() error) {
			defer wg.Done()
			defer RecoverWithCallback(func(err error) {
				results[index] = err
			})

			select {
			case <-ctx.Done():
				results[index] = ctx.Err()
				return
			default:
			}

			results[index] = function()
		}(i, fn)
	}

	wg.Wait()
	return results
}
