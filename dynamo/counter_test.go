package dynamo

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrement(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim lazily creates the counter at 1", func(t *testing.T) {
		resetTable(ctx)

		n, err := db.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("sequential claims count up without gaps", func(t *testing.T) {
		resetTable(ctx)

		for want := int64(1); want <= 5; want++ {
			n, err := db.Increment(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, n)
		}
	})

	t.Run("concurrent claims never hand out the same number", func(t *testing.T) {
		resetTable(ctx)

		const claimants = 10

		var wg sync.WaitGroup
		var mu sync.Mutex
		claimed := map[int64]int{}

		for i := 0; i < claimants; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				// A lost compare-and-set race is retryable, same as
				// the allocator does in production.
				for {
					n, err := db.Increment(ctx)
					if err != nil {
						continue
					}
					mu.Lock()
					claimed[n]++
					mu.Unlock()
					return
				}
			}()
		}
		wg.Wait()

		assert.Len(t, claimed, claimants)
		for n, count := range claimed {
			assert.Equal(t, 1, count, "number %d claimed more than once", n)
			assert.GreaterOrEqual(t, n, int64(1))
			assert.LessOrEqual(t, n, int64(claimants))
		}
	})
}
