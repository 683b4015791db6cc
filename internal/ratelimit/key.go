package ratelimit

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientKey derives the limiter identifier for a request from the client
// address. Requests without a resolvable address share the fallback key
// rather than bypassing the limiter.
func ClientKey(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return "unknown"
	}
	ip := strings.TrimSpace(c.ClientIP())
	if ip == "" {
		return "unknown"
	}
	return ip
}
