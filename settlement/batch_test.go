package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpdater struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
}

func (s *stubUpdater) UpdateBooking(_ context.Context, bookingID string, _ UpdateOp) error {
	s.mu.Lock()
	s.calls = append(s.calls, bookingID)
	s.mu.Unlock()

	if err, ok := s.failFor[bookingID]; ok {
		return err
	}
	return nil
}

func TestApplyBatch(t *testing.T) {
	ops := []UpdateOp{
		{BookingID: "b1", QuantityReturned: 1, TotalPrice: 80},
		{BookingID: "b2", QuantityReturned: 2, TotalPrice: 60},
		{BookingID: "b3", QuantityReturned: 0, TotalPrice: 100},
	}

	t.Run("AllApplied", func(t *testing.T) {
		store := &stubUpdater{}

		result := ApplyBatch(context.Background(), store, ops)
		require.NoError(t, result.Err())
		assert.Equal(t, []string{"b1", "b2", "b3"}, result.Applied)
		assert.Empty(t, result.Failed)
		assert.NotEmpty(t, result.BatchID)
		assert.Len(t, store.calls, 3)
	})

	t.Run("OneFailureDoesNotBlockOthers", func(t *testing.T) {
		store := &stubUpdater{failFor: map[string]error{"b2": errors.New("upstream returned 500")}}

		result := ApplyBatch(context.Background(), store, ops)
		assert.Equal(t, []string{"b1", "b3"}, result.Applied)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "b2", result.Failed[0].BookingID)
		assert.Equal(t, "upstream returned 500", result.Failed[0].Reason)

		var partial *PartialBatchError
		require.ErrorAs(t, result.Err(), &partial)
		assert.Equal(t, []string{"b2"}, partial.FailedIDs)
	})

	t.Run("EmptyBatchIsNoop", func(t *testing.T) {
		store := &stubUpdater{}

		result := ApplyBatch(context.Background(), store, nil)
		require.NoError(t, result.Err())
		assert.Empty(t, result.Applied)
		assert.Empty(t, store.calls)
	})
}
