package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/services"
	"car-passion/cmd/api/session"
	"car-passion/logger"
)

// LoginHandler godoc
// @Summary      Admin login
// @Description  Logs the visitor in against the dealership API. A 409 from the API is accepted only when the active session is confirmed to be this visitor's.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequestDTO  true  "Credentials"
// @Success      200  {object}  dto.LoginResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /auth/login [post]
func LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		var req dto.LoginRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid login body")
			return
		}
		username := strings.TrimSpace(req.Username)
		if username == "" || req.Password == "" {
			badRequest(c, "Please enter username and password")
			return
		}

		res, err := sess.Login(c.Request.Context(), username, req.Password)
		if err != nil {
			logger.WarnWithFields("admin login failed", logger.Fields{
				"session_id": sess.ID,
				"username":   username,
				"error":      err.Error(),
			})
			if errors.Is(err, session.ErrLoginRejected) {
				_ = c.Error(err)
				c.JSON(http.StatusUnauthorized, dto.ErrorResponseDTO{Error: rejectionMessage(err)})
				return
			}
			respondError(c, err)
			return
		}

		msg := "Login successful"
		if res.AlreadyActive {
			msg = "Session already active"
		}
		c.JSON(http.StatusOK, dto.LoginResponseDTO{
			Success:       true,
			AlreadyActive: res.AlreadyActive,
			Message:       msg,
			User:          services.MapUser(res.User),
		})
	}
}

// rejectionMessage returns the server's reason joined onto ErrLoginRejected.
func rejectionMessage(err error) string {
	if errors.Is(err, session.ErrUserUnconfirmed) {
		return "Login could not be confirmed"
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		if errs := joined.Unwrap(); len(errs) > 1 {
			return errs[len(errs)-1].Error()
		}
	}
	return "Login failed"
}

// LogoutHandler godoc
// @Summary      Admin logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /auth/logout [post]
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		if err := sess.Logout(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "logged out"})
	}
}

// SessionHandler godoc
// @Summary      Current admin session
// @Description  Resolves the session against check-session and me when it has not been checked yet
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.SessionDTO
// @Router       /auth/session [get]
func SessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		state := sess.State()
		if state == session.StateUnknown {
			state = sess.Resolve(c.Request.Context())
		}
		out := dto.SessionDTO{
			State:         state.String(),
			Authenticated: state == session.StateAuthenticated,
		}
		if out.Authenticated {
			out.User = services.MapUser(sess.User())
		}
		c.JSON(http.StatusOK, out)
	}
}
