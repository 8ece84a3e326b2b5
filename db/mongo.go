package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"car-passion/logger"
)

const CollectionAdminAuditLogs = "admin_audit_logs"

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database
)

// Init connects the process-wide Mongo client once and ensures indexes.
func Init(ctx context.Context, uri, dbName string) error {
	if uri == "" {
		return errors.New("db: mongo uri is empty")
	}
	var initErr error
	clientOnce.Do(func() {
		if dbName == "" {
			dbName = "carpassion"
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		cl, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			initErr = err
			return
		}
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			_ = cl.Disconnect(context.Background())
			initErr = err
			return
		}
		client = cl
		db = client.Database(dbName)

		if err := ensureIndexes(ctx, db); err != nil {
			initErr = err
			return
		}
		logger.InfoWithFields("mongodb connected and indexes ensured", logger.Fields{"db": dbName})
	})
	return initErr
}

func Client() *mongo.Client     { return client }
func Database() *mongo.Database { return db }

// Close disconnects the client if Init succeeded.
func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	col := d.Collection(CollectionAdminAuditLogs)
	if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "at", Value: -1}},
		Options: options.Index().SetName("idx_at_desc"),
	}); err != nil {
		return err
	}
	if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "car_id", Value: 1}, {Key: "at", Value: -1}},
		Options: options.Index().SetName("idx_car_id_at"),
	}); err != nil {
		return err
	}
	return nil
}
