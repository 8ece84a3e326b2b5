package dto

import (
	"encoding/json"
	"fmt"
	"strconv"

	"car-passion/cmd/api/listing"
)

// ListingDTO is the storefront search view model.
type ListingDTO struct {
	Items         []CarCardDTO       `json:"items"`
	Total         int                `json:"total"`
	Status        string             `json:"status" example:"succeeded"`
	Query         listing.Query      `json:"query"`
	Location      string             `json:"location" example:"make=BMW&page=1&sort=price_asc"`
	ActiveFilters int                `json:"active_filters"`
	Pagination    listing.Pagination `json:"pagination"`
	Notices       []listing.Notice   `json:"notices"`
}

type ApplyFiltersRequestDTO struct {
	Filters map[string]FilterValue `json:"filters" swaggertype:"object,string"`
}

// Strings returns the filters as URL values. Unset values are kept as "" so
// normalisation decides what survives.
func (r ApplyFiltersRequestDTO) Strings() map[string]string {
	out := make(map[string]string, len(r.Filters))
	for k, v := range r.Filters {
		out[k] = string(v)
	}
	return out
}

// FilterValue is a filter scalar sent as a JSON string, number or bool.
// null, false and 0 decode to "".
type FilterValue string

func (v *FilterValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = ""
	case string:
		*v = FilterValue(x)
	case float64:
		if x == 0 {
			*v = ""
			return nil
		}
		*v = FilterValue(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		if x {
			*v = "true"
		} else {
			*v = ""
		}
	default:
		return fmt.Errorf("filter value must be a string, number or bool, got %s", data)
	}
	return nil
}

type ChangeSortRequestDTO struct {
	Sort string `json:"sort" example:"price_desc"`
}

type ChangePageRequestDTO struct {
	Page int `json:"page" example:"2"`
}
