package services

import (
	"errors"
	"strings"
	"time"

	"car-passion/cmd/api/clients/carclient"
	"car-passion/cmd/api/dto"
	"car-passion/models"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError lists the fields that failed.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

const MinCarYear = 1900

var (
	FuelTypes     = []string{"Petrol", "Diesel", "Electric", "Hybrid", "Plug-in Hybrid"}
	Transmissions = []string{"Automatic", "Manual", "Semi-Automatic"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// NormalizeFeatures trims, drops empties and de-duplicates, keeping order.
func NormalizeFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ValidateCarInput checks an admin form and returns the payload to send.
func ValidateCarInput(in dto.CarInputDTO, now time.Time, maxImages int) (carclient.CarPayload, error) {
	p := carclient.CarPayload{
		Make:             strings.TrimSpace(in.Make),
		Model:            strings.TrimSpace(in.Model),
		Year:             in.Year,
		Price:            in.Price,
		KilometersDriven: in.KilometersDriven,
		Color:            strings.TrimSpace(in.Color),
		FuelType:         strings.TrimSpace(in.FuelType),
		Transmission:     strings.TrimSpace(in.Transmission),
		Status:           strings.TrimSpace(in.Status),
		Description:      strings.TrimSpace(in.Description),
		Features:         NormalizeFeatures(in.Features),
		Images:           in.Images,
	}
	if p.Images == nil {
		p.Images = []models.CarImage{}
	}
	if p.Status == "" {
		p.Status = models.CarStatusAvailable
	}

	var missing []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"make", p.Make != ""},
		{"model", p.Model != ""},
		{"year", p.Year != 0},
		{"price", p.Price != 0},
		{"kilometers_driven", p.KilometersDriven != 0},
		{"color", p.Color != ""},
		{"fuelType", p.FuelType != ""},
		{"transmission", p.Transmission != ""},
		{"description", p.Description != ""},
	} {
		if !f.set {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return carclient.CarPayload{}, &ValidationError{Message: "Please fill in all required fields", Fields: missing}
	}

	var invalid []string
	if p.Year < MinCarYear || p.Year > now.Year()+1 {
		invalid = append(invalid, "year")
	}
	if p.Price < 0 {
		invalid = append(invalid, "price")
	}
	if p.KilometersDriven < 0 {
		invalid = append(invalid, "kilometers_driven")
	}
	if !oneOf(p.FuelType, FuelTypes) {
		invalid = append(invalid, "fuelType")
	}
	if !oneOf(p.Transmission, Transmissions) {
		invalid = append(invalid, "transmission")
	}
	if !models.IsValidCarStatus(p.Status) {
		invalid = append(invalid, "status")
	}
	if maxImages > 0 && len(p.Images) > maxImages {
		invalid = append(invalid, "images")
	}
	if len(invalid) > 0 {
		return carclient.CarPayload{}, &ValidationError{Message: "Invalid field values", Fields: invalid}
	}
	return p, nil
}
