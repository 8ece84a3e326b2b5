package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"car-passion/cmd/api/clients/carclient"
	"car-passion/cmd/api/dto"
	"car-passion/config"
	"car-passion/models"
)

var (
	ErrNoValidImages = errors.New("no valid image files to upload")
	ErrTooManyImages = errors.New("too many images for one car")
)

// ImageAPI is the dealership image endpoint surface.
type ImageAPI interface {
	UploadImages(ctx context.Context, files []carclient.ImageFile) ([]models.CarImage, error)
	DeleteImage(ctx context.Context, publicID string) error
}

// UploadService validates and forwards image uploads.
type UploadService struct {
	maxBytes  int64
	maxImages int
}

func NewUploadService(cfg config.UploadsConfig) *UploadService {
	return &UploadService{maxBytes: cfg.MaxImageBytes, maxImages: cfg.MaxImagesPerCar}
}

// Upload sends every acceptable file in one multipart request. Files that
// are not images or exceed the size limit are reported in Rejected.
// existing is the number of images the car already has.
func (s *UploadService) Upload(ctx context.Context, api ImageAPI, existing int, files []*multipart.FileHeader) (dto.UploadImagesResponseDTO, error) {
	out := dto.UploadImagesResponseDTO{
		Images:   []models.CarImage{},
		Rejected: []dto.RejectedImageDTO{},
	}

	valid := make([]carclient.ImageFile, 0, len(files))
	for _, fh := range files {
		f, reason, err := s.readImage(fh)
		if err != nil {
			return out, err
		}
		if reason != "" {
			out.Rejected = append(out.Rejected, dto.RejectedImageDTO{Filename: fh.Filename, Reason: reason})
			continue
		}
		valid = append(valid, f)
	}
	if len(valid) == 0 {
		return out, ErrNoValidImages
	}
	if s.maxImages > 0 && existing+len(valid) > s.maxImages {
		return out, fmt.Errorf("%w: max %d images per car", ErrTooManyImages, s.maxImages)
	}

	images, err := api.UploadImages(ctx, valid)
	if err != nil {
		return out, err
	}
	out.Images = images
	return out, nil
}

func (s *UploadService) readImage(fh *multipart.FileHeader) (carclient.ImageFile, string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return carclient.ImageFile{}, fmt.Sprintf("exceeds the %dMB size limit", s.maxBytes>>20), nil
	}
	rc, err := fh.Open()
	if err != nil {
		return carclient.ImageFile{}, "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return carclient.ImageFile{}, "", fmt.Errorf("read %s: %w", fh.Filename, err)
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return carclient.ImageFile{}, "is not an image file", nil
	}
	return carclient.ImageFile{Filename: fh.Filename, ContentType: ct, Data: data}, "", nil
}

func (s *UploadService) Delete(ctx context.Context, api ImageAPI, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return &ValidationError{Message: "public_id is required"}
	}
	return api.DeleteImage(ctx, publicID)
}
