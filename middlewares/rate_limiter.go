package middleware

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	redisclient "github.com/alohapoopscoop/scoop-service/config/redis"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// ParseCustomRate parses rates like "10-2m", "5-1h" or "20-30s" into a
// limiter.Rate.
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	unit := parts[1][len(parts[1])-1:]
	value, err := strconv.Atoi(strings.TrimSuffix(parts[1], unit))
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid period: %s", parts[1])
	}

	var period time.Duration
	switch unit {
	case "s":
		period = time.Duration(value) * time.Second
	case "m":
		period = time.Duration(value) * time.Minute
	case "h":
		period = time.Duration(value) * time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period unit: %s", unit)
	}

	return limiter.Rate{Period: period, Limit: int64(limit)}, nil
}

// NewRateLimiter builds a Redis-backed per-client limiter for one route.
// Keys combine the route id with the authenticated customer when present,
// falling back to the client IP for guests. On setup errors the middleware
// degrades to a pass-through rather than blocking traffic.
func NewRateLimiter(rateStr, routeID string) gin.HandlerFunc {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		log.Printf("Error parsing rate for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	store, err := redisstore.NewStoreWithOptions(redisclient.GetRedisClient(), limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: rate.Period,
	})
	if err != nil {
		log.Printf("Error creating Redis store for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	limiterInstance := limiter.New(store, rate)

	return ginmiddleware.NewMiddleware(limiterInstance, ginmiddleware.WithKeyGetter(func(c *gin.Context) string {
		if sub, exists := c.Get("sub"); exists {
			if id, ok := sub.(string); ok && id != "" {
				return id
			}
		}
		return c.ClientIP()
	}))
}

// CombinedRateLimiter layers several rates on one route, e.g. a short burst
// window plus a longer abuse window. Each rate gets its own Redis keyspace.
func CombinedRateLimiter(routeID string, rateStrings ...string) gin.HandlerFunc {
	middlewares := make([]gin.HandlerFunc, len(rateStrings))
	for i, rateStr := range rateStrings {
		middlewares[i] = NewRateLimiter(rateStr, fmt.Sprintf("%s_%d", routeID, i))
	}

	return func(c *gin.Context) {
		for _, mw := range middlewares {
			mw(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}
