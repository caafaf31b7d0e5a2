package notification

import (
	"context"
	"sync"
)

// SettledResult is the per-item outcome of a best-effort batch operation.
// Every item is attempted; an Err on one item never aborts the others.
type SettledResult struct {
	Item string
	Err  error
}

// runSettled applies fn to every item, batchSize at a time, and returns one
// result per item in input order. Batching caps simultaneous in-flight calls
// against the user store and the push provider.
func runSettled(ctx context.Context, items []string, batchSize int, fn func(ctx context.Context, item string) error) []SettledResult {
	if batchSize <= 0 {
		batchSize = 1
	}
	results := make([]SettledResult, len(items))
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = SettledResult{Item: items[i], Err: fn(ctx, items[i])}
			}(i)
		}
		wg.Wait()
	}
	return results
}

// failedCount tallies the failures in a settled batch.
func failedCount(results []SettledResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
