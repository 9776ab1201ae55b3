package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/controllers/return_controller"
	"github.com/joy095/bookmarathon/middlewares/auth"
)

func RegisterReturnRoutes(r *gin.Engine, store bookstore.API) {
	controller := return_controller.NewReturnController(store)

	r.GET("/api/returns", controller.GetReturns)
	r.POST("/api/returns", auth.AuthMiddleware(), controller.SubmitReturns)
}
