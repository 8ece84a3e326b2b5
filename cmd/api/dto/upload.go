package dto

import "car-passion/models"

type RejectedImageDTO struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason" example:"exceeds the 5MB size limit"`
}

type UploadImagesResponseDTO struct {
	Images   []models.CarImage  `json:"images"`
	Rejected []RejectedImageDTO `json:"rejected"`
}

type DeleteImageRequestDTO struct {
	PublicID string `json:"public_id"`
}
