package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/controllers/user_controller"
	"github.com/joy095/bookmarathon/middlewares/auth"
)

func RegisterUserRoutes(r *gin.Engine, store bookstore.API) {
	controller := user_controller.NewUserController(store)

	r.GET("/api/users", controller.GetUsers)
	r.POST("/api/users", auth.AuthMiddleware(), controller.RegisterUser)
}
