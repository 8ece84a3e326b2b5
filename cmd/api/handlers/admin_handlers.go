package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/services"
)

const defaultHistoryLimit = 20

// DashboardHandler godoc
// @Summary      Inventory stats
// @Tags         admin
// @Produce      json
// @Success      200  {object}  dto.DashboardStatsDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /admin/dashboard [get]
func DashboardHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		stats, err := svc.Dashboard(c.Request.Context(), sess.Cars)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// AdminListCarsHandler godoc
// @Summary      Admin car table
// @Description  Same filters, sort and page as the storefront. Failures are returned as errors, not retried.
// @Tags         admin
// @Param        make  query  string  false  "Make"
// @Param        sort  query  string  false  "Sort key"
// @Param        page  query  int     false  "Page"
// @Produce      json
// @Success      200  {object}  dto.PaginationAdminCarDTO
// @Router       /admin/cars [get]
func AdminListCarsHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		out, err := svc.List(c.Request.Context(), sess.Cars, c.Request.URL.Query())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// AdminGetCarHandler godoc
// @Summary      Load a car for editing
// @Tags         admin
// @Param        id   path  string  true  "Car id"
// @Produce      json
// @Success      200  {object}  dto.CarDetailDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /admin/cars/{id} [get]
func AdminGetCarHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		car, err := svc.Get(c.Request.Context(), sess.Cars, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, car)
	}
}

// CreateCarHandler godoc
// @Summary      Create a car listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CarInputDTO  true  "Car"
// @Success      201  {object}  dto.CarDetailDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /admin/cars [post]
func CreateCarHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		var in dto.CarInputDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Invalid field values")
			return
		}
		car, err := svc.Create(c.Request.Context(), sess.Cars, actorOf(sess), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, car)
	}
}

// UpdateCarHandler godoc
// @Summary      Update a car listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "Car id"
// @Param        body  body  dto.CarInputDTO  true  "Car"
// @Success      200  {object}  dto.CarDetailDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /admin/cars/{id} [put]
func UpdateCarHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		var in dto.CarInputDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Invalid field values")
			return
		}
		car, err := svc.Update(c.Request.Context(), sess.Cars, actorOf(sess), c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, car)
	}
}

// UpdateCarStatusHandler godoc
// @Summary      Change listing status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "Car id"
// @Param        body  body  dto.CarStatusRequestDTO  true  "available | reserved | sold"
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /admin/cars/{id}/status [patch]
func UpdateCarStatusHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		var req dto.CarStatusRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid status body")
			return
		}
		if err := svc.UpdateStatus(c.Request.Context(), sess.Cars, actorOf(sess), c.Param("id"), req.Status); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "status updated"})
	}
}

// DeleteCarHandler godoc
// @Summary      Delete a car listing
// @Tags         admin
// @Param        id   path  string  true  "Car id"
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /admin/cars/{id} [delete]
func DeleteCarHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), sess.Cars, actorOf(sess), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "car deleted"})
	}
}

// CarHistoryHandler godoc
// @Summary      Audit history of a listing
// @Tags         admin
// @Param        id     path   string  true   "Car id"
// @Param        limit  query  int     false  "Max entries (default 20)"
// @Produce      json
// @Success      200  {array}  models.AdminAuditLog
// @Router       /admin/cars/{id}/history [get]
func CarHistoryHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := int64(defaultHistoryLimit)
		if v := c.Query("limit"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				badRequest(c, "limit must be a positive integer")
				return
			}
			limit = n
		}
		entries, err := svc.History(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "failed to load history"})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
