package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/botucare/clinic-backend/cmd/mainconfig"
	"github.com/botucare/clinic-backend/internal/api/router"
	"github.com/botucare/clinic-backend/internal/catalog"
	appconfig "github.com/botucare/clinic-backend/internal/config"
	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/internal/http/handlers"
	"github.com/botucare/clinic-backend/internal/identity"
	"github.com/botucare/clinic-backend/internal/observability/metrics"
	"github.com/botucare/clinic-backend/internal/workflow"
	"github.com/botucare/clinic-backend/pkg/logging"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-backend API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.AuthJWTSecret == "" {
		logger.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	gw := gateway.NewDynamoGateway(dynamoClient, cfg.TablePrefix, logger)

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
	}
	cancelPing()

	catalogStore, err := catalog.NewStore(ctx, gw, logger)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	clinicMetrics := metrics.NewClinicMetrics(registry)

	sessions := identity.NewSessionStore(redisClient, cfg.SessionTTL)
	idSvc := identity.NewService(gw, sessions, cfg.AuthJWTSecret, cfg.SessionTTL, logger)
	wf := workflow.NewService(gw, catalogStore, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		Identity:           idSvc,
		Metrics:            clinicMetrics,
		Auth:               handlers.NewAuthHandler(idSvc, clinicMetrics, logger),
		Patients:           handlers.NewPatientsHandler(wf, clinicMetrics, logger),
		Injections:         handlers.NewInjectionsHandler(wf, clinicMetrics, logger),
		FollowUps:          handlers.NewFollowUpsHandler(wf, clinicMetrics, logger),
		Appointments:       handlers.NewAppointmentsHandler(wf, clinicMetrics, logger),
		Dashboard:          handlers.NewDashboardHandler(wf, logger),
		Reports:            handlers.NewReportsHandler(wf, catalogStore, logger),
		Catalog:            handlers.NewCatalogHandler(catalogStore, logger),
		Users:              handlers.NewUsersHandler(gw, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	_ = redisClient.Close()

	logger.Info("server stopped")
}
