package return_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/logger"
	"github.com/joy095/bookmarathon/settlement"
	"github.com/joy095/bookmarathon/utils"
)

// ReturnController handles the return-and-settlement screen: viewing the
// current figures and committing a batch of return adjustments.
type ReturnController struct {
	Store bookstore.API
}

func NewReturnController(store bookstore.API) *ReturnController {
	return &ReturnController{Store: store}
}

// ReturnLine is one row of the settlement view.
type ReturnLine struct {
	BookingID        string  `json:"bookingId"`
	BookName         string  `json:"bookName"`
	QuantityBooked   int     `json:"quantityBooked"`
	QuantityReturned int     `json:"quantityReturned"`
	QuantitySold     int     `json:"quantitySold"`
	Rate             float64 `json:"rate"`
	LineTotal        float64 `json:"lineTotal"`
}

// GetReturns returns the settlement view model for one user's bookings,
// computed from the stored return quantities.
func (rc *ReturnController) GetReturns(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter is required"})
		return
	}

	bookings, err := rc.Store.ListBookings(c.Request.Context(), userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for returns, user %s: %v", userID, err)
		respondUpstreamError(c, err)
		return
	}

	lines := make([]ReturnLine, 0, len(bookings))
	for _, b := range bookings {
		figures, err := settlement.ComputeLineFigures(b, b.QuantityReturned)
		if err != nil {
			// Stored data violating the invariant is upstream corruption.
			logger.ErrorLogger.Errorf("Stored booking %s has invalid figures: %v", b.ID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "inconsistent booking data from upstream store"})
			return
		}

		name := b.Book.Name
		if name == "" {
			name = "Unknown Book"
		}
		lines = append(lines, ReturnLine{
			BookingID:        b.ID,
			BookName:         name,
			QuantityBooked:   b.QuantityBooked,
			QuantityReturned: b.QuantityReturned,
			QuantitySold:     figures.QuantitySold,
			Rate:             figures.Rate,
			LineTotal:        figures.LineTotal,
		})
	}

	aggregate, err := settlement.ComputeAggregate(bookings, nil)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "inconsistent booking data from upstream store"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        lines,
		"totalSold":   aggregate.TotalSold,
		"totalAmount": aggregate.TotalAmount,
	})
}

// SubmitReturnsRequest proposes new returned quantities keyed by booking id.
type SubmitReturnsRequest struct {
	UserID  string         `json:"userId" binding:"required"`
	Returns map[string]int `json:"returns" binding:"required"`
}

// SubmitReturns validates the proposed adjustments, builds the minimal
// update batch and applies it. Every operation's outcome is reported: a
// fully applied batch answers 200, a partially failed one answers 207 with
// the exact failed ids.
func (rc *ReturnController) SubmitReturns(c *gin.Context) {
	var req SubmitReturnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and returns are required"})
		return
	}

	// A session may only settle its own bookings.
	if sessionUser, err := utils.GetUserIDFromContext(c); err == nil && sessionUser != req.UserID {
		logger.WarnLogger.Warnf("User %s attempted settlement for user %s", sessionUser, req.UserID)
		c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrUnauthorized.Error()})
		return
	}

	ctx := c.Request.Context()

	bookings, err := rc.Store.ListBookings(ctx, req.UserID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for settlement, user %s: %v", req.UserID, err)
		respondUpstreamError(c, err)
		return
	}

	known := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		known[b.ID] = struct{}{}
	}
	for id := range req.Returns {
		if _, ok := known[id]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown booking id: " + id})
			return
		}
	}

	ops, err := settlement.BuildSettlementBatch(bookings, req.Returns)
	if err != nil {
		var invalid *settlement.InvalidAdjustment
		if errors.As(err, &invalid) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":     invalid.Error(),
				"bookingId": invalid.BookingID,
				"max":       invalid.Max,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build settlement batch"})
		return
	}

	aggregate, err := settlement.ComputeAggregate(bookings, req.Returns)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute settlement totals"})
		return
	}

	if len(ops) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message":     "no changes to apply",
			"totalSold":   aggregate.TotalSold,
			"totalAmount": aggregate.TotalAmount,
		})
		return
	}

	result := settlement.ApplyBatch(ctx, rc.Store, ops)
	if err := result.Err(); err != nil {
		logger.WarnLogger.Warnf("Settlement batch %s partially failed: %v", result.BatchID, err)
		c.JSON(http.StatusMultiStatus, gin.H{
			"message":     "some return updates failed",
			"batch":       result,
			"totalSold":   aggregate.TotalSold,
			"totalAmount": aggregate.TotalAmount,
		})
		return
	}

	logger.InfoLogger.Infof("Settlement batch %s applied: %d updates for user %s",
		result.BatchID, len(result.Applied), req.UserID)
	c.JSON(http.StatusOK, gin.H{
		"message":     "returns submitted successfully",
		"batch":       result,
		"totalSold":   aggregate.TotalSold,
		"totalAmount": aggregate.TotalAmount,
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
