package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/trace"
	"car-passion/logger"
)

// Recovery turns a handler panic into a logged 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorWithFields("panic recovered", logger.Fields{
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"request_id": trace.RequestIDFromContext(c.Request.Context()),
					"panic":      fmt.Sprint(r),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "internal server error"})
			}
		}()
		c.Next()
	}
}
