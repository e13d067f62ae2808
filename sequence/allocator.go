// Package sequence mints the human-readable barcode identifiers handed to a
// registrant and their spouse. Numbers come from a shared counter that is
// incremented through an atomic storage primitive, so concurrent allocations
// never observe the same value.
package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	primaryPrefix = "B"
	spousePrefix  = "D"

	maxAttempts    = 3
	baseRetryDelay = 100 * time.Millisecond
)

// CounterStore is the atomic read-increment-write primitive backing the
// allocator. Increment must create the counter at 1 on first use and return
// the post-increment value. Implementations are expected to fail on
// contention rather than lose an update; the allocator retries.
type CounterStore interface {
	Increment(ctx context.Context) (int64, error)
}

// Allocation is the result of one allocation. Primary and Spouse always
// carry the same number under different prefixes. Fallback is set when the
// counter could not be advanced and the identifiers were derived from the
// wall clock instead; such identifiers are unique but not sequential.
type Allocation struct {
	Number   int64
	Primary  string
	Spouse   string
	Fallback bool
}

type Allocator struct {
	counter CounterStore
	logger  *slog.Logger
}

func NewAllocator(counter CounterStore, logger *slog.Logger) *Allocator {
	return &Allocator{
		counter: counter,
		logger:  logger,
	}
}

// Allocate returns the next barcode pair. It is total: after three failed
// increment attempts it degrades to timestamp-based identifiers rather than
// returning an error, and the shared counter is left untouched on that path.
func (a *Allocator) Allocate(ctx context.Context) Allocation {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		next, err := a.counter.Increment(ctx)
		if err == nil {
			return Allocation{
				Number:  next,
				Primary: formatSequential(primaryPrefix, next),
				Spouse:  formatSequential(spousePrefix, next),
			}
		}

		a.logger.Warn("barcode allocation attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)

		if attempt < maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * baseRetryDelay):
			case <-ctx.Done():
			}
		}
	}

	alloc := a.fallbackAllocation()
	a.logger.Error("barcode allocation exhausted retries, using timestamp fallback",
		slog.String("primaryBarcodeId", alloc.Primary),
	)
	return alloc
}

// Sequential identifiers are zero-padded to five digits and keep growing
// past that without truncation.
func formatSequential(prefix string, n int64) string {
	return fmt.Sprintf("%s-%05d", prefix, n)
}

func (a *Allocator) fallbackAllocation() Allocation {
	ts := time.Now().UnixMilli()
	suffix := rand.IntN(1000)

	return Allocation{
		Number:   ts,
		Primary:  fmt.Sprintf("%s-%d-%03d", primaryPrefix, ts, suffix),
		Spouse:   fmt.Sprintf("%s-%d-%03d", spousePrefix, ts, suffix),
		Fallback: true,
	}
}
