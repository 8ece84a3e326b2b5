package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/listing"
	"car-passion/cmd/api/services"
)

func searchHandler(svc *services.CatalogService, build func(c *gin.Context) (services.SearchAction, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		act, ok := build(c)
		if !ok {
			return
		}
		out, err := svc.Search(c.Request.Context(), sess.Cars, c.Request.URL.Query(), act)
		// a failed fetch is still a valid view: cleared results plus notices
		if err != nil && out.Status != string(listing.StatusFailed) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// ListCarsHandler godoc
// @Summary      Search cars
// @Description  Hydrates filter, sort and page from the query string and loads the listing
// @Tags         cars
// @Param        make          query  string  false  "Make"
// @Param        model         query  string  false  "Model"
// @Param        minPrice      query  number  false  "Minimum price"
// @Param        maxPrice      query  number  false  "Maximum price"
// @Param        minYear       query  int     false  "Minimum year"
// @Param        maxYear       query  int     false  "Maximum year"
// @Param        transmission  query  string  false  "Transmission"
// @Param        fuelType      query  string  false  "Fuel type"
// @Param        sort          query  string  false  "price_asc | price_desc | year_desc | year_asc"
// @Param        page          query  int     false  "Page number (1-based)"
// @Produce      json
// @Success      200  {object}  dto.ListingDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /cars [get]
func ListCarsHandler(svc *services.CatalogService) gin.HandlerFunc {
	return searchHandler(svc, func(*gin.Context) (services.SearchAction, bool) {
		return services.SearchAction{Kind: services.ActionLoad}, true
	})
}

// ApplyFiltersHandler godoc
// @Summary      Apply filters
// @Description  Replaces the filters of the current location and returns page 1
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyFiltersRequestDTO  true  "Filters"
// @Success      200  {object}  dto.ListingDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /cars/search/filters [post]
func ApplyFiltersHandler(svc *services.CatalogService) gin.HandlerFunc {
	return searchHandler(svc, func(c *gin.Context) (services.SearchAction, bool) {
		var req dto.ApplyFiltersRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid filters body")
			return services.SearchAction{}, false
		}
		return services.SearchAction{Kind: services.ActionApplyFilters, Filters: req.Strings()}, true
	})
}

// ChangeSortHandler godoc
// @Summary      Change sort order
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangeSortRequestDTO  true  "Sort"
// @Success      200  {object}  dto.ListingDTO
// @Router       /cars/search/sort [post]
func ChangeSortHandler(svc *services.CatalogService) gin.HandlerFunc {
	return searchHandler(svc, func(c *gin.Context) (services.SearchAction, bool) {
		var req dto.ChangeSortRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid sort body")
			return services.SearchAction{}, false
		}
		return services.SearchAction{Kind: services.ActionChangeSort, Sort: strings.TrimSpace(req.Sort)}, true
	})
}

// ChangePageHandler godoc
// @Summary      Change page
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePageRequestDTO  true  "Page"
// @Success      200  {object}  dto.ListingDTO
// @Router       /cars/search/page [post]
func ChangePageHandler(svc *services.CatalogService) gin.HandlerFunc {
	return searchHandler(svc, func(c *gin.Context) (services.SearchAction, bool) {
		var req dto.ChangePageRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid page body")
			return services.SearchAction{}, false
		}
		return services.SearchAction{Kind: services.ActionChangePage, Page: req.Page}, true
	})
}

// ClearFiltersHandler godoc
// @Summary      Clear all filters
// @Tags         cars
// @Produce      json
// @Success      200  {object}  dto.ListingDTO
// @Router       /cars/search/clear [post]
func ClearFiltersHandler(svc *services.CatalogService) gin.HandlerFunc {
	return searchHandler(svc, func(*gin.Context) (services.SearchAction, bool) {
		return services.SearchAction{Kind: services.ActionClearFilters}, true
	})
}

// FeaturedCarsHandler godoc
// @Summary      Featured cars
// @Description  The five newest listings for the home page
// @Tags         cars
// @Produce      json
// @Success      200  {array}  dto.CarCardDTO
// @Router       /cars/featured [get]
func FeaturedCarsHandler(svc *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		cars, err := svc.Featured(c.Request.Context(), sess.Cars)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cars)
	}
}

// GetCarHandler godoc
// @Summary      Get car by id
// @Tags         cars
// @Param        id   path   string  true  "Car id"
// @Produce      json
// @Success      200  {object}  dto.CarDetailDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /cars/{id} [get]
func GetCarHandler(svc *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := visitor(c)
		if !ok {
			return
		}
		car, err := svc.Detail(c.Request.Context(), sess.Cars, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, car)
	}
}
