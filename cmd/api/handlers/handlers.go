package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/middleware"
	"car-passion/cmd/api/session"
)

// HealthHandler godoc
// @Summary      Health check
// @Tags         ops
// @Produce      json
// @Success      200  {object}  object{status=string}
// @Router       /health [get]
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func actorOf(sess *session.Session) string {
	if u := sess.User(); u != nil && u.Username != "" {
		return u.Username
	}
	return "admin"
}

// visitor returns the session or writes a 500 when the middleware is missing.
func visitor(c *gin.Context) (*session.Session, bool) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "visitor session missing"})
		return nil, false
	}
	return sess, true
}
