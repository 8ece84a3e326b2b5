package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// PageSize is fixed by the dealership API.
const PageSize = 10

// Filter keys understood by GET /cars.
const (
	FilterMake         = "make"
	FilterModel        = "model"
	FilterMinPrice     = "minPrice"
	FilterMaxPrice     = "maxPrice"
	FilterMinYear      = "minYear"
	FilterMaxYear      = "maxYear"
	FilterTransmission = "transmission"
	FilterFuelType     = "fuelType"

	paramSort = "sort"
	paramPage = "page"
)

var FilterKeys = []string{
	FilterMake, FilterModel,
	FilterMinPrice, FilterMaxPrice,
	FilterMinYear, FilterMaxYear,
	FilterTransmission, FilterFuelType,
}

var numericFilters = map[string]bool{
	FilterMinPrice: true,
	FilterMaxPrice: true,
	FilterMinYear:  true,
	FilterMaxYear:  true,
}

func isFilterKey(k string) bool {
	for _, fk := range FilterKeys {
		if fk == k {
			return true
		}
	}
	return false
}

// SortKey orders the listing.
type SortKey string

const (
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortYearDesc  SortKey = "year_desc"
	SortYearAsc   SortKey = "year_asc"

	DefaultSort = SortPriceAsc
)

// ParseSort maps unknown or empty values to DefaultSort.
func ParseSort(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortPriceAsc, SortPriceDesc, SortYearDesc, SortYearAsc:
		return k
	default:
		return DefaultSort
	}
}

// ParsePage returns 1 for anything that is not a positive integer.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// FilterSet maps filter keys to raw values. Only truthy values of known
// keys survive Normalize.
type FilterSet map[string]string

// truthy returns the cleaned value and whether it counts as set.
func truthy(key, value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", false
	}
	if numericFilters[key] {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n == 0 {
			return "", false
		}
	}
	return v, true
}

// Normalize drops unknown keys and falsy values. The result is never nil.
func (f FilterSet) Normalize() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		if !isFilterKey(k) {
			continue
		}
		if clean, ok := truthy(k, v); ok {
			out[k] = clean
		}
	}
	return out
}

// ActiveFilterCount counts set filters. sort and page never count.
func ActiveFilterCount(filters map[string]string) int {
	n := 0
	for k, v := range filters {
		if k == paramSort || k == paramPage || !isFilterKey(k) {
			continue
		}
		if _, ok := truthy(k, v); ok {
			n++
		}
	}
	return n
}

// Query is the canonical projection of filter, sort and page state.
type Query struct {
	Filters FilterSet `json:"filters"`
	Sort    SortKey   `json:"sort"`
	Page    int       `json:"page"`
}

// NewQuery builds a normalised query.
func NewQuery(filters map[string]string, sort string, page int) Query {
	if page < 1 {
		page = 1
	}
	return Query{
		Filters: FilterSet(filters).Normalize(),
		Sort:    ParseSort(sort),
		Page:    page,
	}
}

// DefaultQuery has no filters, price_asc and page 1.
func DefaultQuery() Query {
	return NewQuery(nil, "", 1)
}

// ParseQuery hydrates a query from location parameters.
func ParseQuery(v url.Values) Query {
	filters := make(map[string]string, len(FilterKeys))
	for _, k := range FilterKeys {
		if val := v.Get(k); val != "" {
			filters[k] = val
		}
	}
	return NewQuery(filters, v.Get(paramSort), ParsePage(v.Get(paramPage)))
}

// Values serialises the query. Falsy filters are never included.
func (q Query) Values() url.Values {
	v := url.Values{}
	for k, val := range q.Filters {
		if clean, ok := truthy(k, val); ok && isFilterKey(k) {
			v.Set(k, clean)
		}
	}
	v.Set(paramSort, string(ParseSort(string(q.Sort))))
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set(paramPage, strconv.Itoa(page))
	return v
}

// Encode returns the location query string, keys sorted.
func (q Query) Encode() string {
	return q.Values().Encode()
}

// ActiveFilters counts the set filters of q.
func (q Query) ActiveFilters() int {
	return ActiveFilterCount(q.Filters)
}
