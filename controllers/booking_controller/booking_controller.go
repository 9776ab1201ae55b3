package booking_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/logger"
	"github.com/joy095/bookmarathon/models/book_models"
	"github.com/joy095/bookmarathon/models/booking_models"
	"github.com/joy095/bookmarathon/models/user_models"
	"github.com/joy095/bookmarathon/settlement"
)

// BookingController handles the register-and-book flow and the per-user
// booking listing.
type BookingController struct {
	Store bookstore.API
}

func NewBookingController(store bookstore.API) *BookingController {
	return &BookingController{Store: store}
}

// CreateBookingRequest carries the user details and the selected book
// quantities from the booking form.
type CreateBookingRequest struct {
	User  user_models.CreateUserRequest `json:"user" binding:"required"`
	Books []booking_models.BookingItem  `json:"books" binding:"required,min=1,dive"`
}

// CreateBooking registers the user upstream and records one booking for the
// selected quantities. The response echoes the computed totals so the form
// can confirm what was booked.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, phone and at least one book with quantity > 0 are required"})
		return
	}

	ctx := c.Request.Context()

	books, err := bc.Store.ListBooks(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch catalog for booking: %v", err)
		respondUpstreamError(c, err)
		return
	}
	rates := book_models.RatesByID(books)

	totalBooks := 0
	totalAmount := 0.0
	for _, item := range req.Books {
		rate, ok := rates[item.BookID]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown book id: " + item.BookID})
			return
		}
		totalBooks += item.Quantity
		totalAmount = settlement.RoundMinor(totalAmount + float64(item.Quantity)*rate)
	}

	user, err := bc.Store.CreateUser(ctx, req.User)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create user for booking: %v", err)
		respondUpstreamError(c, err)
		return
	}

	_, err = bc.Store.CreateBooking(ctx, booking_models.CreateBookingRequest{
		UserID: user.ID,
		Books:  req.Books,
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create booking for user %s: %v", user.ID, err)
		respondUpstreamError(c, err)
		return
	}

	logger.InfoLogger.Infof("Booking recorded for user %s: %d books", user.ID, totalBooks)
	c.JSON(http.StatusCreated, gin.H{
		"userId":      user.ID,
		"bookCount":   len(req.Books),
		"totalBooks":  totalBooks,
		"totalAmount": totalAmount,
	})
}

// BookingLine is one row of the booking listing with resolved figures.
type BookingLine struct {
	BookingID      string  `json:"bookingId"`
	BookName       string  `json:"bookName"`
	Rate           float64 `json:"rate"`
	QuantityBooked int     `json:"quantityBooked"`
	Total          float64 `json:"total"`
	Status         string  `json:"status"`
	BookedAt       string  `json:"bookedAt"`
}

// GetBookings returns the booking view model for one user: per-line
// resolved rate and total plus the aggregate row.
func (bc *BookingController) GetBookings(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter is required"})
		return
	}

	bookings, err := bc.Store.ListBookings(c.Request.Context(), userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for user %s: %v", userID, err)
		respondUpstreamError(c, err)
		return
	}

	lines := make([]BookingLine, 0, len(bookings))
	totalBooks := 0
	totalAmount := 0.0
	for _, b := range bookings {
		name := b.Book.Name
		if name == "" {
			name = "Unknown Book"
		}
		total := settlement.RoundMinor(b.DisplayTotal())
		lines = append(lines, BookingLine{
			BookingID:      b.ID,
			BookName:       name,
			Rate:           b.ResolvedRate(),
			QuantityBooked: b.QuantityBooked,
			Total:          total,
			Status:         b.Status,
			BookedAt:       b.BookedAt.Format("2006-01-02 15:04:05"),
		})
		totalBooks += b.QuantityBooked
		totalAmount = settlement.RoundMinor(totalAmount + total)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        lines,
		"totalBooks":  totalBooks,
		"totalAmount": totalAmount,
	})
}

func respondUpstreamError(c *gin.Context, err error) {
	var apiErr *bookstore.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message, "upstreamStatus": apiErr.Status})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "upstream store unreachable"})
}
