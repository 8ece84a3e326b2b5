package dto

import "car-passion/models"

// CarCardDTO is the compact listing representation shown in catalog grids.
type CarCardDTO struct {
	ID               string  `json:"id"`
	Title            string  `json:"title" example:"2019 BMW X5"`
	Make             string  `json:"make"`
	Model            string  `json:"model"`
	Year             int     `json:"year"`
	Price            float64 `json:"price"`
	KilometersDriven float64 `json:"kilometers_driven"`
	FuelType         string  `json:"fuel_type"`
	Transmission     string  `json:"transmission"`
	Status           string  `json:"status"`
	CoverImage       string  `json:"cover_image,omitempty"`
	Excerpt          string  `json:"excerpt"`
}

// CarDetailDTO is the full car detail page.
type CarDetailDTO struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Make             string            `json:"make"`
	Model            string            `json:"model"`
	Year             int               `json:"year"`
	Price            float64           `json:"price"`
	KilometersDriven float64           `json:"kilometers_driven"`
	Color            string            `json:"color"`
	FuelType         string            `json:"fuel_type"`
	Transmission     string            `json:"transmission"`
	Status           string            `json:"status"`
	Images           []models.CarImage `json:"images"`
	Description      string            `json:"description"`
	DescriptionText  string            `json:"description_text"`
	Features         []string          `json:"features"`
}

// CarInputDTO is the admin create/update body. Numbers arrive as JSON numbers.
type CarInputDTO struct {
	Make             string            `json:"make" example:"Toyota"`
	Model            string            `json:"model" example:"Corolla"`
	Year             int               `json:"year" example:"2018"`
	Price            float64           `json:"price" example:"850000"`
	KilometersDriven float64           `json:"kilometers_driven" example:"42000"`
	Color            string            `json:"color" example:"White"`
	FuelType         string            `json:"fuelType" example:"Petrol"`
	Transmission     string            `json:"transmission" example:"Automatic"`
	Status           string            `json:"status" example:"available"`
	Description      string            `json:"description"`
	Features         []string          `json:"features"`
	Images           []models.CarImage `json:"images"`
}

type CarStatusRequestDTO struct {
	Status string `json:"status" example:"sold"`
}
