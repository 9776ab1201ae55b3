package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	db "github.com/joy095/bookmarathon/config/redis"
	"github.com/joy095/bookmarathon/logger"
)

// ParseCustomRate allows formats like "10-2m", "30-20m", "5-1h", "20-10s".
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	if len(durationStr) < 2 {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}
	unit := durationStr[len(durationStr)-1:]
	n, err := strconv.Atoi(durationStr[:len(durationStr)-1])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}

	var period time.Duration
	switch unit {
	case "s":
		period = time.Duration(n) * time.Second
	case "m":
		period = time.Duration(n) * time.Minute
	case "h":
		period = time.Duration(n) * time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	return limiter.Rate{Period: period, Limit: int64(limit)}, nil
}

// NewRateLimiter creates a redis-backed rate limit middleware with custom
// periods like "10-2m". Without a reachable redis the middleware degrades
// to a pass-through so booking submission keeps working.
func NewRateLimiter(rateStr, routeID string) gin.HandlerFunc {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Error parsing rate for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	rdb, err := db.GetRedisClient()
	if err != nil {
		logger.WarnLogger.Warnf("Rate limiting disabled for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	store, err := redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: rate.Period,
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Error creating Redis store for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	limiterInstance := limiter.New(store, rate)

	return ginmiddleware.NewMiddleware(limiterInstance, ginmiddleware.WithKeyGetter(func(c *gin.Context) string {
		if userID := c.GetString("user_id"); userID != "" {
			return userID
		}
		return c.ClientIP()
	}))
}
