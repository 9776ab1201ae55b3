package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/bookmarathon/logger"
	"github.com/joy095/bookmarathon/utils"
)

// AdminAccessRequired gates the verification routes behind the admin access
// code. The configured value is an argon2id digest, never the plain code.
func AdminAccessRequired(expectedHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.GetHeader("X-Admin-Access-Code")
		if code == "" || !utils.VerifyAccessCode(code, expectedHash) {
			logger.WarnLogger.Warnf("Admin access denied for %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden: invalid admin access code."})
			return
		}
		c.Next()
	}
}
