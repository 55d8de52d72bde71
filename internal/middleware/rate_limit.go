package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brightpaws/dogtrainer-api/internal/cache"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
)

// RateLimit throttles requests per client IP and route using Redis. When the
// client is nil or Redis errors, the request is let through: the limiter is
// protection, not a dependency.
func RateLimit(rdb *cache.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			httperr.Write(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down.")
			c.Abort()
			return
		}

		c.Next()
	}
}
