package middleware

import "github.com/gin-gonic/gin"

// callerIDKey is the key used to store the authenticated caller's party ID.
const callerIDKey = contextKey("callerID")

// GetCallerIDFromContext retrieves the authenticated caller's party ID from
// the Gin context, falling back to the request context.
func GetCallerIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(callerIDKey)); exists {
		if id, ok := v.(string); ok {
			return id, true
		}
		return "", false
	}
	if v := c.Request.Context().Value(callerIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id, true
		}
	}
	return "", false
}
