package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrUserIDNotFound = errors.New("authentication required: user ID not found")
	ErrUnauthorized   = errors.New("unauthorized access")
)

// GetUserIDFromContext returns the session user id placed by the auth
// middleware, or ErrUserIDNotFound when the request carried no session.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID := c.GetString("user_id")
	if userID == "" {
		return "", ErrUserIDNotFound
	}
	return userID, nil
}
