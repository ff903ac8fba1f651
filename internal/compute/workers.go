package compute

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// pool bounds how many goroutines an engine computes on at once, across every
// level of fan-out (complexes, cuts, concepts). The goroutine that calls
// forEach always works too, so the pool lends out size-1 extra slots. Items
// that find no free slot run inline on the caller; nested fan-outs never
// block waiting for a slot their parent holds.
type pool struct {
	size  int
	slots *semaphore.Weighted
}

func newPool(workers int) *pool {
	if workers < 1 {
		workers = 1
	}
	return &pool{size: workers, slots: semaphore.NewWeighted(int64(workers - 1))}
}

// forEach runs fn for every index in [0, n). The first error, from a worker
// or an inline call, cancels the context handed to the remaining calls and is
// returned. Callers write results into index-addressed slots, so output order
// never depends on scheduling.
func (p *pool) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
	)
	record := func(err error) error {
		if err != nil {
			once.Do(func() {
				firstErr = err
				cancel()
			})
		}
		return err
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		if runCtx.Err() != nil {
			break
		}
		if p.slots.TryAcquire(1) {
			g.Go(func() error {
				defer p.slots.Release(1)
				return record(fn(runCtx, i))
			})
			continue
		}
		if record(fn(runCtx, i)) != nil {
			break
		}
	}

	_ = g.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
