package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/session"
	"car-passion/logger"
)

const AdminLoginPath = "/admin/login"

// RequireAdmin lets only authenticated visitors through. An unchecked
// session is resolved against the dealership API first.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			abortUnauthorized(c)
			return
		}
		state := sess.State()
		if state == session.StateUnknown {
			state = sess.Resolve(c.Request.Context())
		}
		if state != session.StateAuthenticated {
			logger.DebugWithFields("admin access denied", logger.Fields{
				"path":       c.Request.URL.Path,
				"session_id": sess.ID,
				"state":      state.String(),
			})
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponseDTO{
		Error:    "authentication required",
		Redirect: AdminLoginPath,
	})
}
