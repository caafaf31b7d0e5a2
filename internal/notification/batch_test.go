package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSettledAttemptsEveryItem(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	var mu sync.Mutex
	seen := map[string]bool{}

	results := runSettled(context.Background(), items, 2, func(_ context.Context, item string) error {
		mu.Lock()
		seen[item] = true
		mu.Unlock()
		if item == "c" {
			return errors.New("boom")
		}
		return nil
	})

	require.Len(t, results, len(items))
	assert.Len(t, seen, len(items), "a failing item must not stop the rest")
	for i, r := range results {
		assert.Equal(t, items[i], r.Item, "results keep input order")
	}
	assert.Equal(t, 1, failedCount(results))
	assert.Error(t, results[2].Err)
	assert.NoError(t, results[3].Err)
}

func TestRunSettledBoundsConcurrency(t *testing.T) {
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	results := runSettled(context.Background(), items, 4, func(_ context.Context, _ string) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})

	require.Len(t, results, 20)
	assert.LessOrEqual(t, maxInFlight, 4)
}

func TestRunSettledEmptyAndZeroBatch(t *testing.T) {
	assert.Empty(t, runSettled(context.Background(), nil, 10, func(context.Context, string) error { return nil }))

	// A non-positive batch size degrades to one at a time rather than panicking.
	results := runSettled(context.Background(), []string{"a", "b"}, 0, func(context.Context, string) error { return nil })
	assert.Len(t, results, 2)
	assert.Zero(t, failedCount(results))
}
