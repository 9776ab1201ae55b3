package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/controllers/catalog_controller"
)

func RegisterCatalogRoutes(r *gin.Engine, store bookstore.API) {
	controller := catalog_controller.NewCatalogController(store)

	r.GET("/api/books", controller.GetBooks)
}
