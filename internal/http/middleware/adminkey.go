package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/http/response"
)

// AdminKey gates write endpoints behind a shared secret passed as the
// auth_key query parameter.
func AdminKey(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			response.RespondError(c, http.StatusForbidden, "admin_disabled", nil)
			c.Abort()
			return
		}
		key := c.Query("auth_key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			response.RespondError(c, http.StatusForbidden, "invalid_auth_key", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
