package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/joy095/bookmarathon/logger"
	"github.com/joy095/bookmarathon/utils"
)

// AuthMiddleware verifies the session token on every mutating request. The
// browser gate alone is not enough; the API itself must check the
// credential.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if os.Getenv("AUTH_DISABLED") == "true" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.WarnLogger.Warn("Request without authorization header rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "NO_TOKEN", "error": "No authorization token provided."})
			return
		}

		if len(authHeader) <= 7 || !strings.EqualFold(authHeader[:7], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_AUTH_FORMAT", "error": "Invalid authorization format."})
			return
		}
		rawToken := authHeader[7:]

		token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return utils.GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			logger.WarnLogger.Warnf("Invalid session token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid or expired session token."})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid token claims."})
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Unauthorized: Missing user identification from token."})
			return
		}

		c.Set("user_id", sub)
		c.Next()
	}
}
