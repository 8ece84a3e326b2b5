package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/services"
)

// UploadImagesHandler godoc
// @Summary      Upload car images
// @Description  Accepts multipart field "images". Non-image or oversized files are listed in rejected.
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        images    formData  file  true   "Image files"
// @Param        existing  formData  int   false  "Images the car already has"
// @Success      200  {object}  dto.UploadImagesResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /admin/uploads/images [post]
func UploadImagesHandler(svc *services.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			badRequest(c, "expected multipart form")
			return
		}
		existing := 0
		if v := c.PostForm("existing"); v != "" {
			existing, err = strconv.Atoi(v)
			if err != nil || existing < 0 {
				badRequest(c, "existing must be a non-negative integer")
				return
			}
		}
		out, err := svc.Upload(c.Request.Context(), sess.Cars, existing, form.File["images"])
		if err != nil {
			status, msg := classify(err)
			_ = c.Error(err)
			c.JSON(status, gin.H{"error": msg, "rejected": out.Rejected})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// DeleteImageHandler godoc
// @Summary      Delete an uploaded image
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeleteImageRequestDTO  true  "Image"
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /admin/uploads/image [delete]
func DeleteImageHandler(svc *services.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		var req dto.DeleteImageRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid image body")
			return
		}
		if err := svc.Delete(c.Request.Context(), sess.Cars, req.PublicID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "image deleted"})
	}
}
