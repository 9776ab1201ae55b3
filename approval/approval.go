// Package approval drives the pending -> approved transition for bookings.
// The transition is one-way; no reversal exists.
package approval

import (
	"context"
	"sort"
	"sync"

	"github.com/joy095/bookmarathon/logger"
	"github.com/joy095/bookmarathon/models/booking_models"
	"github.com/joy095/bookmarathon/settlement"
)

// Approver requests the transition for one booking against the upstream
// store. Implemented by the bookstore client.
type Approver interface {
	ApproveBooking(ctx context.Context, bookingID string) (*booking_models.Booking, error)
}

// Result reports a bulk approval outcome: every id that transitioned and
// every id that failed, never a single collapsed boolean.
type Result struct {
	Approved []string                  `json:"approved"`
	Failed   []settlement.BatchFailure `json:"failed,omitempty"`
}

// Err returns nil when every requested transition succeeded, or a
// *settlement.PartialBatchError naming the failed booking ids.
func (r Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.BookingID
	}
	return &settlement.PartialBatchError{FailedIDs: ids, AppliedCount: len(r.Approved)}
}

// Tracker remembers which bookings were approved during this session so
// repeated requests stay no-op successes even before a refetch reflects the
// new status upstream.
type Tracker struct {
	mu       sync.Mutex
	approved map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{approved: make(map[string]struct{})}
}

func (t *Tracker) isApproved(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.approved[id]
	return ok
}

func (t *Tracker) record(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.approved[id] = struct{}{}
}

// ApproveOne requests the transition for exactly one booking. Approving an
// already-approved booking is a no-op success, not an error.
func (t *Tracker) ApproveOne(ctx context.Context, store Approver, bookingID string) error {
	if t.isApproved(bookingID) {
		return nil
	}

	if _, err := store.ApproveBooking(ctx, bookingID); err != nil {
		logger.ErrorLogger.Errorf("Approval failed for booking %s: %v", bookingID, err)
		return err
	}

	t.record(bookingID)
	return nil
}

// ApproveAll requests the transition for every booking still pending,
// skipping anything already approved upstream or recorded locally. All
// requests are dispatched concurrently and unordered; a failure on one
// booking never blocks recording success for the others.
func (t *Tracker) ApproveAll(ctx context.Context, store Approver, bookings []booking_models.Booking) Result {
	var pending []string
	for _, b := range bookings {
		if b.IsApproved() || t.isApproved(b.ID) {
			continue
		}
		pending = append(pending, b.ID)
	}

	var (
		result Result
		mu     sync.Mutex
		wg     sync.WaitGroup
	)

	for _, id := range pending {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.ApproveBooking(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, settlement.BatchFailure{
					BookingID: id,
					Reason:    err.Error(),
				})
				return
			}
			t.record(id)
			result.Approved = append(result.Approved, id)
		}(id)
	}
	wg.Wait()

	sort.Strings(result.Approved)
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].BookingID < result.Failed[j].BookingID
	})

	if len(result.Failed) > 0 {
		logger.WarnLogger.Warnf("Bulk approval: %d approved, %d failed", len(result.Approved), len(result.Failed))
	}
	return result
}
