package booking_models

import (
	"encoding/json"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// BookRef is the book referenced by a booking. The upstream store returns
// either a bare object id or a populated snapshot, so it unmarshals from
// both shapes.
type BookRef struct {
	ID   string  `json:"_id"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

func (r *BookRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Name = ""
		r.Rate = 0
		return nil
	}

	type bookRef BookRef
	var ref bookRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	*r = BookRef(ref)
	return nil
}

// Booking is a user's reservation of a quantity of one book at a rate.
// Rate and TotalPrice are denormalized upstream and may be zero/absent;
// ResolvedRate and DisplayTotal apply the fallback rules.
type Booking struct {
	ID               string    `json:"_id"`
	UserID           string    `json:"userId"`
	Book             BookRef   `json:"bookId"`
	QuantityBooked   int       `json:"quantityBooked"`
	QuantityReturned int       `json:"quantityReturned"`
	Rate             float64   `json:"rate"`
	TotalPrice       float64   `json:"totalPrice"`
	Status           string    `json:"status"`
	BookedAt         time.Time `json:"bookedAt"`
}

// ResolvedRate returns the booking's own rate when present and non-zero,
// falling back to the referenced book's rate, then zero. Every total in the
// system is computed from this resolution.
func (b Booking) ResolvedRate() float64 {
	if b.Rate != 0 {
		return b.Rate
	}
	return b.Book.Rate
}

// DisplayTotal prefers the stored total price and derives quantity × rate
// only when no total was stored.
func (b Booking) DisplayTotal() float64 {
	if b.TotalPrice != 0 {
		return b.TotalPrice
	}
	return float64(b.QuantityBooked) * b.ResolvedRate()
}

// IsApproved reports whether the booking completed the approval transition.
func (b Booking) IsApproved() bool {
	return b.Status == StatusApproved
}

// BookingItem is one requested line of a new booking.
type BookingItem struct {
	BookID   string `json:"bookId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// CreateBookingRequest is the booking payload forwarded upstream.
type CreateBookingRequest struct {
	UserID string        `json:"userId"`
	Books  []BookingItem `json:"books"`
}
