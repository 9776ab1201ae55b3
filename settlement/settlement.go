// Package settlement computes sold-quantity and total-price figures for
// booking returns and produces the minimal set of update operations needed
// to persist a batch of adjustments. It is pure and carries no framework or
// transport dependencies.
package settlement

import (
	"fmt"
	"math"

	"github.com/joy095/bookmarathon/models/booking_models"
)

// LineFigures are the computed figures for a single booking line.
type LineFigures struct {
	QuantitySold int     `json:"quantitySold"`
	Rate         float64 `json:"rate"`
	LineTotal    float64 `json:"lineTotal"`
}

// Aggregate sums line figures across a set of bookings. TotalAmount is
// always the sum of each line's own resolved total, never a separately
// tracked running value.
type Aggregate struct {
	TotalSold   int     `json:"totalSold"`
	TotalAmount float64 `json:"totalAmount"`
}

// UpdateOp is one persistence operation against the upstream store. Ops in
// a batch are independent: no ordering and no atomicity is implied.
type UpdateOp struct {
	BookingID        string  `json:"bookingId"`
	QuantityReturned int     `json:"quantityReturned"`
	TotalPrice       float64 `json:"totalPrice"`
}

// InvalidAdjustment reports a proposed return quantity outside
// [0, quantityBooked]. Out-of-range values are rejected, never clamped.
type InvalidAdjustment struct {
	BookingID string
	Proposed  int
	Max       int
}

func (e *InvalidAdjustment) Error() string {
	return fmt.Sprintf("invalid return adjustment for booking %s: %d not in [0, %d]",
		e.BookingID, e.Proposed, e.Max)
}

// RoundMinor rounds a currency amount to the minor unit (paise).
func RoundMinor(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ComputeLineFigures derives the sold quantity, resolved rate and line
// total for one booking given a proposed returned quantity.
func ComputeLineFigures(b booking_models.Booking, returnedQty int) (LineFigures, error) {
	if returnedQty < 0 || returnedQty > b.QuantityBooked {
		return LineFigures{}, &InvalidAdjustment{
			BookingID: b.ID,
			Proposed:  returnedQty,
			Max:       b.QuantityBooked,
		}
	}

	sold := b.QuantityBooked - returnedQty
	rate := b.ResolvedRate()
	return LineFigures{
		QuantitySold: sold,
		Rate:         rate,
		LineTotal:    RoundMinor(float64(sold) * rate),
	}, nil
}

// ComputeAggregate totals line figures over all bookings. Bookings without
// a proposed quantity in returnedByID keep their stored returned quantity.
func ComputeAggregate(bookings []booking_models.Booking, returnedByID map[string]int) (Aggregate, error) {
	var agg Aggregate
	for _, b := range bookings {
		returned := b.QuantityReturned
		if proposed, ok := returnedByID[b.ID]; ok {
			returned = proposed
		}

		line, err := ComputeLineFigures(b, returned)
		if err != nil {
			return Aggregate{}, err
		}
		agg.TotalSold += line.QuantitySold
		agg.TotalAmount = RoundMinor(agg.TotalAmount + line.LineTotal)
	}
	return agg, nil
}

// BuildSettlementBatch emits one UpdateOp per booking whose proposed
// returned quantity differs from the stored value. Unchanged bookings emit
// nothing, avoiding redundant writes. The whole batch is validated before
// any op is emitted, so a single bad adjustment leaves no partial output.
func BuildSettlementBatch(bookings []booking_models.Booking, returnedByID map[string]int) ([]UpdateOp, error) {
	var ops []UpdateOp
	for _, b := range bookings {
		proposed, ok := returnedByID[b.ID]
		if !ok {
			continue
		}

		line, err := ComputeLineFigures(b, proposed)
		if err != nil {
			return nil, err
		}
		if proposed == b.QuantityReturned {
			continue
		}

		ops = append(ops, UpdateOp{
			BookingID:        b.ID,
			QuantityReturned: proposed,
			TotalPrice:       line.LineTotal,
		})
	}
	return ops, nil
}
