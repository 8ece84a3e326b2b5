package services

import (
	"fmt"
	"strings"

	"car-passion/cmd/api/clients/authclient"
	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/textutil"
	"car-passion/models"
)

const DefaultExcerptLength = 120

func carTitle(c models.Car) string {
	parts := make([]string, 0, 3)
	if c.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", c.Year))
	}
	if c.Make != "" {
		parts = append(parts, c.Make)
	}
	if c.Model != "" {
		parts = append(parts, c.Model)
	}
	return strings.Join(parts, " ")
}

func mapCarCard(c models.Car, excerptLen int) dto.CarCardDTO {
	return dto.CarCardDTO{
		ID:               c.ID,
		Title:            carTitle(c),
		Make:             c.Make,
		Model:            c.Model,
		Year:             c.Year,
		Price:            c.Price,
		KilometersDriven: c.KilometersDriven,
		FuelType:         c.FuelType,
		Transmission:     c.Transmission,
		Status:           c.Status,
		CoverImage:       c.CoverImage(),
		Excerpt:          textutil.Excerpt(c.Description, excerptLen),
	}
}

func mapCarCards(cars []models.Car, excerptLen int) []dto.CarCardDTO {
	out := make([]dto.CarCardDTO, 0, len(cars))
	for _, c := range cars {
		out = append(out, mapCarCard(c, excerptLen))
	}
	return out
}

func mapCarDetail(c models.Car) dto.CarDetailDTO {
	images := c.Images
	if images == nil {
		images = []models.CarImage{}
	}
	features := c.Features
	if features == nil {
		features = []string{}
	}
	return dto.CarDetailDTO{
		ID:               c.ID,
		Title:            carTitle(c),
		Make:             c.Make,
		Model:            c.Model,
		Year:             c.Year,
		Price:            c.Price,
		KilometersDriven: c.KilometersDriven,
		Color:            c.Color,
		FuelType:         c.FuelType,
		Transmission:     c.Transmission,
		Status:           c.Status,
		Images:           images,
		Description:      c.Description,
		DescriptionText:  textutil.PlainText(c.Description),
		Features:         features,
	}
}

func mapAdminCar(c models.Car) dto.AdminCarDTO {
	return dto.AdminCarDTO{
		ID:         c.ID,
		Title:      carTitle(c),
		Price:      c.Price,
		Status:     c.Status,
		CoverImage: c.CoverImage(),
		ImageCount: len(c.Images),
	}
}

// MapUser converts a dealership user to its DTO; nil stays nil.
func MapUser(u *authclient.User) *dto.UserDTO {
	if u == nil {
		return nil
	}
	return &dto.UserDTO{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
