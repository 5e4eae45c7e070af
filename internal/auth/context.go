package auth

import (
	"strings"

	"github.com/fekuna/omnipos-pricing-service/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID = "X-User-ID"
	userIDKey    = "user_id"
)

// ActorMiddleware copies the caller's id from the X-User-ID header into the gin context.
// Identity is established upstream; this service only records who acted.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// RequireActor rejects requests that carry no actor.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			response.Unauthorized(c, "missing "+HeaderUserID+" header")
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
