package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/controllers/verify_controller"
	middleware "github.com/joy095/bookmarathon/middlewares"
)

func RegisterVerifyRoutes(r *gin.Engine, store bookstore.API, adminAccessHash string) {
	controller := verify_controller.NewVerifyController(store)

	admin := r.Group("/api/admin", middleware.AdminAccessRequired(adminAccessHash))
	admin.GET("/bookings/:id", controller.GetBookings)
	admin.POST("/bookings/:id/approve", controller.ApproveOne)
	admin.POST("/bookings/:id/approve-all", controller.ApproveAll)
}
