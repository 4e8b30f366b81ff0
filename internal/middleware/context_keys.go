package middleware

import "github.com/gin-gonic/gin"

// userIDKey stores the authenticated user's ID. The auth middleware places it
// in the request context so service-layer code can reach it without Gin.
const userIDKey = contextKey("userID")

// GetUserIDFromContext returns the authenticated user ID for the request and
// whether the auth middleware has set one.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v := c.Request.Context().Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok {
			return userID, true
		}
	}
	// Handlers mounted without the full middleware chain may still have set
	// the value on the Gin context directly.
	if v, exists := c.Get(string(userIDKey)); exists {
		if userID, ok := v.(string); ok {
			return userID, true
		}
	}
	return "", false
}
