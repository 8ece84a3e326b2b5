package models

import "encoding/json"

// Listing status values accepted by the dealership API.
const (
	CarStatusAvailable = "available"
	CarStatusReserved  = "reserved"
	CarStatusSold      = "sold"
)

// CarStatuses lists every valid status in display order.
var CarStatuses = []string{CarStatusAvailable, CarStatusReserved, CarStatusSold}

func IsValidCarStatus(s string) bool {
	for _, v := range CarStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CarImage is an uploaded image asset.
type CarImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Car is a dealership listing as returned by GET /cars and GET /cars/:id.
type Car struct {
	ID               string     `json:"_id,omitempty"`
	Make             string     `json:"make"`
	Model            string     `json:"model"`
	Year             int        `json:"year"`
	Price            float64    `json:"price"`
	KilometersDriven float64    `json:"kilometers_driven"`
	Color            string     `json:"color"`
	FuelType         string     `json:"fuelType"`
	Transmission     string     `json:"transmission"`
	Status           string     `json:"status"`
	Images           []CarImage `json:"images"`
	Description      string     `json:"description"`
	Features         []string   `json:"features"`
	CreatedAt        string     `json:"createdAt,omitempty"`
	UpdatedAt        string     `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts the older "mileage" field for kilometers_driven.
func (c *Car) UnmarshalJSON(data []byte) error {
	type plain Car
	var aux struct {
		plain
		Mileage *float64 `json:"mileage"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Car(aux.plain)
	if c.KilometersDriven == 0 && aux.Mileage != nil {
		c.KilometersDriven = *aux.Mileage
	}
	return nil
}

// CoverImage returns the first image URL or "".
func (c Car) CoverImage() string {
	if len(c.Images) == 0 {
		return ""
	}
	return c.Images[0].URL
}
