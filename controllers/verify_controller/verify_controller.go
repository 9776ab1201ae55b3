package verify_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/approval"
	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/logger"
)

// VerifyController handles the admin verification screen: listing bookings
// under a verification group and approving them one by one or in bulk.
type VerifyController struct {
	Store   bookstore.API
	Tracker *approval.Tracker
}

func NewVerifyController(store bookstore.API) *VerifyController {
	return &VerifyController{
		Store:   store,
		Tracker: approval.NewTracker(),
	}
}

// GetBookings lists the bookings under an admin verification group.
func (vc *VerifyController) GetBookings(c *gin.Context) {
	groupID := c.Param("id")

	bookings, err := vc.Store.ListAdminBookings(c.Request.Context(), groupID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch verification group %s: %v", groupID, err)
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

// ApproveOne transitions a single booking to approved. Re-approving an
// already-approved booking answers success without a second upstream call.
func (vc *VerifyController) ApproveOne(c *gin.Context) {
	bookingID := c.Param("id")

	if err := vc.Tracker.ApproveOne(c.Request.Context(), vc.Store, bookingID); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookingId": bookingID, "status": "approved"})
}

// ApproveAll transitions every pending booking in a verification group.
// Partial failures answer 207 with the exact failed ids; the successes are
// still recorded.
func (vc *VerifyController) ApproveAll(c *gin.Context) {
	groupID := c.Param("id")
	ctx := c.Request.Context()

	bookings, err := vc.Store.ListAdminBookings(ctx, groupID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch verification group %s for bulk approval: %v", groupID, err)
		respondUpstreamError(c, err)
		return
	}

	result := vc.Tracker.ApproveAll(ctx, vc.Store, bookings)
	if err := result.Err(); err != nil {
		c.JSON(http.StatusMultiStatus, gin.H{
			"message": "some approvals failed",
			"result":  result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "all pending bookings approved",
		"result":  result,
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
