package services

import (
	"context"
	"net/url"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/listing"
	"car-passion/config"
	"car-passion/models"
)

// FeaturedLimit is the number of listings shown on the home page.
const FeaturedLimit = 5

// CarReader is the read side of the dealership car API.
type CarReader interface {
	listing.Fetcher
	FeaturedCars(ctx context.Context, limit int) ([]models.Car, error)
	GetCar(ctx context.Context, id string) (models.Car, error)
}

type SearchActionKind int

const (
	ActionLoad SearchActionKind = iota
	ActionApplyFilters
	ActionChangeSort
	ActionChangePage
	ActionClearFilters
)

// SearchAction is one user intent on the storefront listing.
type SearchAction struct {
	Kind    SearchActionKind
	Filters map[string]string
	Sort    string
	Page    int
}

// CatalogService serves the public storefront through the listing controller.
type CatalogService struct {
	policy      listing.RetryPolicy
	maxAttempts int
	sleep       listing.SleepFunc
	excerptLen  int
}

func NewCatalogService(cfg config.ListingConfig) *CatalogService {
	p := listing.NewTransientRetryPolicy(cfg.MaxRetries, cfg.RetryDelay)
	return &CatalogService{
		policy:      p,
		maxAttempts: p.MaxAttempts(),
		excerptLen:  DefaultExcerptLength,
	}
}

// WithSleep overrides the retry wait; used by tests.
func (s *CatalogService) WithSleep(fn listing.SleepFunc) *CatalogService {
	s.sleep = fn
	return s
}

func (s *CatalogService) newController(cars listing.Fetcher) *listing.Controller {
	opts := []listing.Option{listing.WithRetryPolicy(s.policy, s.maxAttempts)}
	if s.sleep != nil {
		opts = append(opts, listing.WithSleep(s.sleep))
	}
	return listing.NewController(cars, opts...)
}

// Search hydrates a controller from location, applies act and fetches. A
// failed fetch still returns the cleared view model with its notices.
func (s *CatalogService) Search(ctx context.Context, cars listing.Fetcher, location url.Values, act SearchAction) (dto.ListingDTO, error) {
	c := s.newController(cars)
	c.Hydrate(location)

	var (
		snap listing.Snapshot
		err  error
	)
	switch act.Kind {
	case ActionApplyFilters:
		snap, err = c.ApplyFilters(ctx, act.Filters)
	case ActionChangeSort:
		snap, err = c.ChangeSort(ctx, act.Sort)
	case ActionChangePage:
		snap, err = c.ChangePage(ctx, act.Page)
	case ActionClearFilters:
		snap, err = c.ClearFilters(ctx)
	default:
		snap, err = c.Load(ctx)
	}
	return s.mapSnapshot(snap), err
}

func (s *CatalogService) mapSnapshot(snap listing.Snapshot) dto.ListingDTO {
	notices := snap.Notices
	if notices == nil {
		notices = []listing.Notice{}
	}
	return dto.ListingDTO{
		Items:         mapCarCards(snap.Items, s.excerptLen),
		Total:         snap.Total,
		Status:        string(snap.Status),
		Query:         snap.Query,
		Location:      snap.Location,
		ActiveFilters: snap.ActiveFilters,
		Pagination:    snap.Pagination,
		Notices:       notices,
	}
}

func (s *CatalogService) Featured(ctx context.Context, cars CarReader) ([]dto.CarCardDTO, error) {
	list, err := cars.FeaturedCars(ctx, FeaturedLimit)
	if err != nil {
		return nil, err
	}
	return mapCarCards(list, s.excerptLen), nil
}

func (s *CatalogService) Detail(ctx context.Context, cars CarReader, id string) (dto.CarDetailDTO, error) {
	car, err := cars.GetCar(ctx, id)
	if err != nil {
		return dto.CarDetailDTO{}, err
	}
	return mapCarDetail(car), nil
}
