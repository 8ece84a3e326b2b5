package repositories

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"car-passion/db"
	"car-passion/models"
)

// AuditLog stores and reads admin audit entries.
type AuditLog interface {
	Insert(ctx context.Context, log models.AdminAuditLog) error
	ListByCar(ctx context.Context, carID string, limit int64) ([]models.AdminAuditLog, error)
}

type AdminAuditRepository struct {
	col *mongo.Collection
}

func NewAdminAuditRepository(d *mongo.Database) *AdminAuditRepository {
	return &AdminAuditRepository{col: d.Collection(db.CollectionAdminAuditLogs)}
}

func (r *AdminAuditRepository) Insert(ctx context.Context, log models.AdminAuditLog) error {
	if log.At.IsZero() {
		log.At = time.Now()
	}
	_, err := r.col.InsertOne(ctx, log)
	return err
}

// ListByCar returns the newest entries for a car, newest first.
func (r *AdminAuditRepository) ListByCar(ctx context.Context, carID string, limit int64) ([]models.AdminAuditLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"car_id": carID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AdminAuditLog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NopAuditLog discards entries. Used when Mongo is not configured.
type NopAuditLog struct{}

func (NopAuditLog) Insert(context.Context, models.AdminAuditLog) error { return nil }

func (NopAuditLog) ListByCar(context.Context, string, int64) ([]models.AdminAuditLog, error) {
	return []models.AdminAuditLog{}, nil
}

// MemoryAuditLog keeps entries in memory.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []models.AdminAuditLog
}

func (m *MemoryAuditLog) Insert(_ context.Context, log models.AdminAuditLog) error {
	if log.At.IsZero() {
		log.At = time.Now()
	}
	m.mu.Lock()
	m.entries = append(m.entries, log)
	m.mu.Unlock()
	return nil
}

func (m *MemoryAuditLog) ListByCar(_ context.Context, carID string, limit int64) ([]models.AdminAuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AdminAuditLog{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].CarID != carID {
			continue
		}
		out = append(out, m.entries[i])
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

// All returns every entry in insertion order.
func (m *MemoryAuditLog) All() []models.AdminAuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AdminAuditLog, len(m.entries))
	copy(out, m.entries)
	return out
}

var (
	_ AuditLog = (*AdminAuditRepository)(nil)
	_ AuditLog = NopAuditLog{}
	_ AuditLog = (*MemoryAuditLog)(nil)
)
