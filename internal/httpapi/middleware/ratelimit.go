// Package middleware carries the request-boundary defenses shared by every
// route: rate limiting, security headers, and request logging.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/demostack/usersapi/internal/ratelimit"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RateLimit enforces per-client sliding windows. Write methods go through
// the strict limiter, everything else through the standard one. Rejected
// requests get a 429 with a Retry-After hint and never reach the handler.
func RateLimit(standard, strict *ratelimit.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := standard
		tier := "standard"
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			limiter = strict
			tier = "strict"
		}

		key := ratelimit.ClientKey(c)
		result, errAllow := limiter.Allow(c.Request.Context(), key)
		if errAllow != nil {
			// Admission is best-effort; a broken backend never blocks traffic.
			log.WithError(errAllow).Warn("rate limit check failed, admitting request")
			c.Next()
			return
		}
		if !result.Allowed {
			retryAfter := int(limiter.Window().Seconds())
			log.WithFields(log.Fields{"client": key, "tier": tier}).Warn("rate limit exceeded")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail":      "Too many requests. Please try again later.",
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}
