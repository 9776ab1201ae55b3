package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/controllers/booking_controller"
	middleware "github.com/joy095/bookmarathon/middlewares"
	"github.com/joy095/bookmarathon/middlewares/auth"
)

func RegisterBookingRoutes(r *gin.Engine, store bookstore.API) {
	controller := booking_controller.NewBookingController(store)

	r.GET("/api/bookings", controller.GetBookings)
	r.POST("/api/bookings",
		auth.AuthMiddleware(),
		middleware.NewRateLimiter("10-1m", "createBooking"),
		controller.CreateBooking)
}
