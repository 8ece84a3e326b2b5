package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/clients/carclient"
	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/httpclient"
	"car-passion/cmd/api/services"
	"car-passion/cmd/api/session"
)

// respondError maps a service error to a status code and an ErrorResponseDTO.
func respondError(c *gin.Context, err error) {
	status, msg := classify(err)
	_ = c.Error(err)
	c.JSON(status, dto.ErrorResponseDTO{Error: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNoValidImages), errors.Is(err, services.ErrTooManyImages):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, carclient.ErrNotFound):
		return http.StatusNotFound, "car not found"
	case errors.Is(err, session.ErrSessionConflict):
		return http.StatusConflict, "another admin session is already active"
	case errors.Is(err, session.ErrLoginRejected):
		return http.StatusUnauthorized, "Login failed"
	case errors.Is(err, context.DeadlineExceeded), httpclient.IsKind(err, httpclient.KindTimeout):
		return http.StatusGatewayTimeout, "dealership API timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request cancelled"
	case httpclient.IsKind(err, httpclient.KindServer):
		status := httpclient.StatusCode(err)
		msg := httpclient.Message(err)
		if msg == "" {
			msg = http.StatusText(status)
		}
		if status >= 400 && status < 500 {
			return status, msg
		}
		return http.StatusBadGateway, msg
	default:
		return http.StatusBadGateway, "dealership API unavailable"
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: msg})
}
