package dto

// DashboardStatsDTO counts listings by status.
type DashboardStatsDTO struct {
	TotalCars     int `json:"total_cars"`
	AvailableCars int `json:"available_cars"`
	ReservedCars  int `json:"reserved_cars"`
	SoldCars      int `json:"sold_cars"`
}

// AdminCarDTO is a row of the admin management table.
type AdminCarDTO struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
	CoverImage string  `json:"cover_image,omitempty"`
	ImageCount int     `json:"image_count"`
}

type PaginationAdminCarDTO = Pagination[AdminCarDTO]
