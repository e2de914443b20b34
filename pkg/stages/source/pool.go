package source

import (
	"context"
	"sync"
)

// forEach runs fn for every index in [0, n) on up to workers goroutines.
// The first error cancels the jobs not yet started and is returned.
func forEach(ctx context.Context, n, workers int, fn func(i int) error) error {
	if workers > n {
		workers = n
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	// each worker sends at most one error before returning
	errChan := make(chan error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errChan <- err
					return
				}
				if err := fn(i); err != nil {
					errChan <- err
					cancel()
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errChan)
	return <-errChan
}
