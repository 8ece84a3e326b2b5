package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"car-passion/cmd/api/httpclient"
	"car-passion/cmd/api/router"
	"car-passion/cmd/api/services"
	"car-passion/cmd/api/session"
	"car-passion/logger"
	"car-passion/config"
	"car-passion/db"
	"car-passion/eventbus"
	"car-passion/repositories"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// @title           Car Passion Storefront API
// @version         1.0
// @description     Storefront gateway in front of the dealership API: catalog search, car details and the admin console
// @BasePath        /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Errorf("config load failed: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level, cfg.ServiceName)
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	audit := auditLog(ctx, cfg)
	events := inventoryEvents()
	defer events.Close()

	sessions := session.NewStore(cfg.Session.TTL, func() *httpclient.BaseClient {
		return httpclient.NewBaseClient(cfg.DealerAPI.BaseURL, httpclient.Config{
			Timeout:    cfg.DealerAPI.Timeout,
			RetryDelay: cfg.DealerAPI.TransportRetryDelay,
		})
	})
	go sessions.Run(ctx, sweepInterval)

	r := router.New(router.Deps{
		Config:   cfg,
		Sessions: sessions,
		Catalog:  services.NewCatalogService(cfg.Listing),
		Admin:    services.NewAdminService(audit, events, cfg.Uploads.MaxImagesPerCar),
		Uploads:  services.NewUploadService(cfg.Uploads),
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Span-Id"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoWithFields("storefront gateway listening", logger.Fields{
			"addr":       srv.Addr,
			"dealer_api": cfg.DealerAPI.BaseURL,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithFields("http server failed", logger.Fields{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.InfoWithFields("shutting down", logger.Fields{"signal": sig.String()})
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("http server shutdown failed", logger.Fields{"error": err.Error()})
	}
	if db.Client() != nil {
		if err := db.Close(shutdownCtx); err != nil {
			logger.WarnWithFields("mongo close failed", logger.Fields{"error": err.Error()})
		}
	}
}

// auditLog connects to Mongo when it is configured. A connection failure
// disables auditing rather than the gateway.
func auditLog(ctx context.Context, cfg *config.AppConfig) repositories.AuditLog {
	if cfg.MongoURI == "" {
		logger.Log.Info("mongo_uri not set, admin audit log disabled")
		return repositories.NopAuditLog{}
	}
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.Init(initCtx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		logger.WarnWithFields("mongo init failed, admin audit log disabled", logger.Fields{"error": err.Error()})
		return repositories.NopAuditLog{}
	}
	return repositories.NewAdminAuditRepository(db.Database())
}

func inventoryEvents() eventbus.Publisher {
	brokers, ok := eventbus.Brokers()
	if !ok {
		logger.Log.Info("KAFKA_BOOTSTRAP_SERVERS not set, inventory events disabled")
		return eventbus.NopPublisher{}
	}
	if err := eventbus.EnsureTopics(brokers, eventbus.TopicInventoryEvents, 3); err != nil {
		logger.WarnWithFields("kafka topic setup failed", logger.Fields{"error": err.Error()})
	}
	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.WarnWithFields("kafka producer init failed, inventory events disabled", logger.Fields{"error": err.Error()})
		return eventbus.NopPublisher{}
	}
	return bus
}
