package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// batchPlan partitions work into fixed windows. Items inside a window run
// concurrently; windows run one after another with Delay between them.
type batchPlan struct {
	Size  int
	Delay time.Duration
	wait  func(ctx context.Context, d time.Duration) error
}

func newBatchPlan(size int, delay time.Duration) batchPlan {
	if size <= 0 {
		size = 10
	}
	return batchPlan{Size: size, Delay: delay}
}

// Batches returns how many windows n items need.
func (p batchPlan) Batches(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + p.Size - 1) / p.Size
}

func (p batchPlan) pause(ctx context.Context) error {
	if p.wait != nil {
		return p.wait(ctx, p.Delay)
	}
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// runBatches applies fn to every item and returns results in input order. fn
// reports failures through its result, so one item never cancels its siblings.
// Cancellation is honoured between windows only; the returned slice holds the
// results of every window that completed.
func runBatches[T, R any](ctx context.Context, plan batchPlan, items []T, fn func(context.Context, T) R, onBatch func(index, size int)) ([]R, error) {
	results := make([]R, 0, len(items))
	total := plan.Batches(len(items))

	for b := 0; b < total; b++ {
		start := b * plan.Size
		end := start + plan.Size
		if end > len(items) {
			end = len(items)
		}
		window := items[start:end]
		out := make([]R, len(window))

		var g errgroup.Group
		for i := range window {
			i := i
			g.Go(func() error {
				out[i] = fn(ctx, window[i])
				return nil
			})
		}
		_ = g.Wait()
		results = append(results, out...)

		if onBatch != nil {
			onBatch(b, len(window))
		}
		if b < total-1 {
			if err := plan.pause(ctx); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

// sampleFailures keeps the first limit failure messages.
func sampleFailures(samples []string, msg string, limit int) []string {
	if len(samples) < limit {
		samples = append(samples, msg)
	}
	return samples
}
