package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"car-passion/cmd/api/clients/carclient"
	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/listing"
	"car-passion/cmd/api/trace"
	"car-passion/logger"
	"car-passion/eventbus"
	"car-passion/models"
	"car-passion/repositories"
)

// Audit actions.
const (
	AuditActionCreate = "car.create"
	AuditActionUpdate = "car.update"
	AuditActionStatus = "car.status"
	AuditActionDelete = "car.delete"
)

const publishTimeout = 3 * time.Second

// CarAdminAPI is the dealership surface the admin console needs.
type CarAdminAPI interface {
	listing.Fetcher
	GetCar(ctx context.Context, id string) (models.Car, error)
	CreateCar(ctx context.Context, in carclient.CarPayload) (models.Car, error)
	UpdateCar(ctx context.Context, id string, in carclient.CarPayload) (models.Car, error)
	UpdateStatus(ctx context.Context, id, status string) error
	DeleteCar(ctx context.Context, id string) error
}

// AdminService implements the admin console: stats, listing table and CRUD.
// Every mutation is audited and published as an inventory event.
type AdminService struct {
	audit     repositories.AuditLog
	events    eventbus.Publisher
	maxImages int
	now       func() time.Time
}

func NewAdminService(audit repositories.AuditLog, events eventbus.Publisher, maxImages int) *AdminService {
	if audit == nil {
		audit = repositories.NopAuditLog{}
	}
	if events == nil {
		events = eventbus.NopPublisher{}
	}
	return &AdminService{audit: audit, events: events, maxImages: maxImages, now: time.Now}
}

// Dashboard counts listings by status over GET /cars.
func (s *AdminService) Dashboard(ctx context.Context, cars listing.Fetcher) (dto.DashboardStatsDTO, error) {
	resp, err := cars.ListCars(ctx, nil)
	if err != nil {
		return dto.DashboardStatsDTO{}, err
	}
	var out dto.DashboardStatsDTO
	for _, c := range resp.Cars {
		switch c.Status {
		case models.CarStatusAvailable:
			out.AvailableCars++
		case models.CarStatusReserved:
			out.ReservedCars++
		case models.CarStatusSold:
			out.SoldCars++
		}
	}
	out.TotalCars = len(resp.Cars)
	if resp.Total > out.TotalCars {
		out.TotalCars = resp.Total
	}
	return out, nil
}

// List runs the admin table query. Unlike the storefront it does not retry.
func (s *AdminService) List(ctx context.Context, cars listing.Fetcher, location url.Values) (dto.PaginationAdminCarDTO, error) {
	c := listing.NewController(cars, listing.WithRetryPolicy(listing.NoRetry, 1))
	c.Hydrate(location)
	snap, err := c.Load(ctx)
	if err != nil {
		return dto.PaginationAdminCarDTO{}, err
	}
	rows := make([]dto.AdminCarDTO, 0, len(snap.Items))
	for _, car := range snap.Items {
		rows = append(rows, mapAdminCar(car))
	}
	return dto.PaginationAdminCarDTO{
		Data:       rows,
		Page:       snap.Pagination.Page,
		PageSize:   snap.Pagination.PageSize,
		Total:      snap.Total,
		TotalPages: snap.Pagination.TotalPages,
	}, nil
}

func (s *AdminService) Get(ctx context.Context, cars CarAdminAPI, id string) (dto.CarDetailDTO, error) {
	car, err := cars.GetCar(ctx, id)
	if err != nil {
		return dto.CarDetailDTO{}, err
	}
	return mapCarDetail(car), nil
}

func (s *AdminService) Create(ctx context.Context, cars CarAdminAPI, actor string, in dto.CarInputDTO) (dto.CarDetailDTO, error) {
	payload, err := ValidateCarInput(in, s.now(), s.maxImages)
	if err != nil {
		return dto.CarDetailDTO{}, err
	}
	start := s.now()
	car, err := cars.CreateCar(ctx, payload)
	s.record(ctx, AuditActionCreate, car.ID, actor, start, err)
	if err != nil {
		return dto.CarDetailDTO{}, err
	}
	s.publish(ctx, eventbus.EventCarCreated, car, actor)
	return mapCarDetail(car), nil
}

func (s *AdminService) Update(ctx context.Context, cars CarAdminAPI, actor, id string, in dto.CarInputDTO) (dto.CarDetailDTO, error) {
	payload, err := ValidateCarInput(in, s.now(), s.maxImages)
	if err != nil {
		return dto.CarDetailDTO{}, err
	}
	start := s.now()
	car, err := cars.UpdateCar(ctx, id, payload)
	s.record(ctx, AuditActionUpdate, id, actor, start, err)
	if err != nil {
		return dto.CarDetailDTO{}, err
	}
	if car.ID == "" {
		car.ID = id
	}
	s.publish(ctx, eventbus.EventCarUpdated, car, actor)
	return mapCarDetail(car), nil
}

func (s *AdminService) UpdateStatus(ctx context.Context, cars CarAdminAPI, actor, id, status string) error {
	status = strings.TrimSpace(status)
	if !models.IsValidCarStatus(status) {
		return &ValidationError{Message: "Invalid field values", Fields: []string{"status"}}
	}
	start := s.now()
	err := cars.UpdateStatus(ctx, id, status)
	s.record(ctx, AuditActionStatus, id, actor, start, err)
	if err != nil {
		return err
	}
	s.publish(ctx, eventbus.EventCarStatusChanged, models.Car{ID: id, Status: status}, actor)
	return nil
}

func (s *AdminService) Delete(ctx context.Context, cars CarAdminAPI, actor, id string) error {
	start := s.now()
	err := cars.DeleteCar(ctx, id)
	s.record(ctx, AuditActionDelete, id, actor, start, err)
	if err != nil {
		return err
	}
	s.publish(ctx, eventbus.EventCarDeleted, models.Car{ID: id}, actor)
	return nil
}

// History returns the newest audit entries for a car.
func (s *AdminService) History(ctx context.Context, id string, limit int64) ([]models.AdminAuditLog, error) {
	return s.audit.ListByCar(ctx, id, limit)
}

func (s *AdminService) record(ctx context.Context, action, carID, actor string, start time.Time, opErr error) {
	entry := models.AdminAuditLog{
		Action:     action,
		CarID:      carID,
		Actor:      actor,
		RequestID:  trace.RequestIDFromContext(ctx),
		Success:    opErr == nil,
		DurationMs: s.now().Sub(start).Milliseconds(),
		At:         s.now(),
	}
	if opErr != nil {
		msg := opErr.Error()
		entry.ErrorMessage = &msg
	}
	// the audit write must not be cut short by a cancelled request
	if err := s.audit.Insert(context.WithoutCancel(ctx), entry); err != nil {
		logger.ErrorWithFields("admin audit insert failed", logger.Fields{
			"action": action,
			"car_id": carID,
			"error":  err.Error(),
		})
	}
}

func (s *AdminService) publish(ctx context.Context, eventType string, car models.Car, actor string) {
	evt, err := eventbus.NewJSONEvent(eventType, eventbus.InventoryEvent{
		CarID:     car.ID,
		Make:      car.Make,
		Model:     car.Model,
		Year:      car.Year,
		Status:    car.Status,
		Actor:     actor,
		RequestID: trace.RequestIDFromContext(ctx),
	})
	if err != nil {
		logger.WarnWithFields("inventory event encode failed", logger.Fields{"type": eventType, "error": err.Error()})
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err = s.events.Publish(pctx, eventbus.TopicInventoryEvents.Base(), evt)
	if err == nil {
		return
	}
	logger.WarnWithFields("inventory event publish failed", logger.Fields{
		"type":   eventType,
		"car_id": car.ID,
		"error":  err.Error(),
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return
	}
	// parked for replay
	evt.LastError = err.Error()
	if dlqErr := s.events.Publish(pctx, eventbus.TopicInventoryEvents.DLQ(), evt); dlqErr != nil {
		logger.ErrorWithFields("inventory event dlq publish failed", logger.Fields{
			"event_id": evt.ID,
			"error":    dlqErr.Error(),
		})
	}
}
