package catalog_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/logger"
)

// CatalogController serves the read-only book catalog.
type CatalogController struct {
	Store bookstore.API
}

func NewCatalogController(store bookstore.API) *CatalogController {
	return &CatalogController{Store: store}
}

// GetBooks lists catalog books with their unit rates.
func (cc *CatalogController) GetBooks(c *gin.Context) {
	books, err := cc.Store.ListBooks(c.Request.Context())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch books: %v", err)
		var apiErr *bookstore.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message, "upstreamStatus": apiErr.Status})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream store unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": books})
}
