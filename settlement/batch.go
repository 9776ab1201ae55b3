package settlement

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// BookingUpdater persists a single update operation against the upstream
// store. Implemented by the bookstore client.
type BookingUpdater interface {
	UpdateBooking(ctx context.Context, bookingID string, op UpdateOp) error
}

// BatchFailure records one operation that could not be applied.
type BatchFailure struct {
	BookingID string `json:"bookingId"`
	Reason    string `json:"reason"`
}

// BatchResult reports the outcome of every operation in a settlement batch.
// Partial application is a valid outcome and is reported, not hidden.
type BatchResult struct {
	BatchID string         `json:"batchId"`
	Applied []string       `json:"applied"`
	Failed  []BatchFailure `json:"failed,omitempty"`
}

// Err returns nil when every operation committed, or a *PartialBatchError
// naming the failed booking ids.
func (r BatchResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.BookingID
	}
	return &PartialBatchError{FailedIDs: ids, AppliedCount: len(r.Applied)}
}

// PartialBatchError reports that some operations in a batch failed while
// others succeeded.
type PartialBatchError struct {
	FailedIDs    []string
	AppliedCount int
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("%d of %d operations failed: %s",
		len(e.FailedIDs), len(e.FailedIDs)+e.AppliedCount, strings.Join(e.FailedIDs, ", "))
}

// ApplyBatch applies every operation independently and concurrently against
// the store. Operations carry no inter-op ordering guarantee; a failure on
// one never blocks the others. The result lists exactly which ids committed
// and which did not.
func ApplyBatch(ctx context.Context, store BookingUpdater, ops []UpdateOp) BatchResult {
	result := BatchResult{BatchID: uuid.NewString()}
	if len(ops) == 0 {
		return result
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, op := range ops {
		wg.Add(1)
		go func(op UpdateOp) {
			defer wg.Done()
			err := store.UpdateBooking(ctx, op.BookingID, op)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, BatchFailure{
					BookingID: op.BookingID,
					Reason:    err.Error(),
				})
				return
			}
			result.Applied = append(result.Applied, op.BookingID)
		}(op)
	}
	wg.Wait()

	// Deterministic output regardless of completion order.
	sort.Strings(result.Applied)
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].BookingID < result.Failed[j].BookingID
	})
	return result
}
