package handler

import "github.com/gin-gonic/gin"

// currentUserID extracts the authenticated user's id set by the auth
// middleware. A missing or malformed value means the route was wired
// without RequireRole.
func currentUserID(c *gin.Context) (string, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
