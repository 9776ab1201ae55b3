package user_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/clients/bookstore"
	"github.com/joy095/bookmarathon/logger"
	"github.com/joy095/bookmarathon/models/user_models"
)

// UserController handles registration and the admin user listing.
type UserController struct {
	Store bookstore.API
}

func NewUserController(store bookstore.API) *UserController {
	return &UserController{Store: store}
}

// RegisterUser creates a user upstream.
func (uc *UserController) RegisterUser(c *gin.Context) {
	var req user_models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and phone are required"})
		return
	}

	user, err := uc.Store.CreateUser(c.Request.Context(), req)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create user: %v", err)
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

// GetUsers lists all registered users.
func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.Store.ListUsers(c.Request.Context())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch users: %v", err)
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

func respondUpstreamError(c *gin.Context, err error) {
	var apiErr *bookstore.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message, "upstreamStatus": apiErr.Status})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "upstream store unreachable"})
}
