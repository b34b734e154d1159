package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shenikar/incident_reporting/internal/config"
	v1 "github.com/shenikar/incident_reporting/internal/handler/http/v1"
	"github.com/shenikar/incident_reporting/internal/repository"
	"github.com/shenikar/incident_reporting/internal/service"
	"github.com/shenikar/incident_reporting/internal/upload"
	"github.com/shenikar/incident_reporting/internal/webhook"
	"github.com/shenikar/incident_reporting/pkg/logger"
	"github.com/shenikar/incident_reporting/pkg/metrics"
	mongoclient "github.com/shenikar/incident_reporting/pkg/mongo"
	"github.com/shenikar/incident_reporting/pkg/postgres"
	redisclient "github.com/shenikar/incident_reporting/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/incident_reporting/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Incident Reporting API
// @version 1.0
// @description Citizens report local incidents with a photo; administrators review them and update their status.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey AdminSecret
// @in header
// @name X-Admin-Secret
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
		migrationURL = strings.Replace(migrationURL, "postgresql://", "pgx5://", 1)
	}

	m, err := migrate.New("file://migrations", migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// newIncidentRepository подключает хранилище, выбранное через STORE_DRIVER.
// Возвращаемая функция закрывает соединение.
func newIncidentRepository(ctx context.Context, cfg *config.Config, log *logrus.Logger) (service.IncidentRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := mongoclient.NewMongoClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoIncidentRepository(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		log.Info("Successfully connected to MongoDB")
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		if err := runMigrations(cfg, log); err != nil {
			return nil, nil, err
		}
		dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Successfully connected to PostgreSQL")
		return repository.NewIncidentRepository(dbpool), dbpool.Close, nil
	}
}

func newUploadBackend(cfg *config.Config) (upload.Backend, error) {
	if cfg.UploadBackend == config.UploadBackendFTP {
		return upload.NewFTPBackend(upload.FTPConfig{
			Host:          cfg.FTPHost,
			Port:          cfg.FTPPort,
			User:          cfg.FTPUser,
			Password:      cfg.FTPPassword,
			Folder:        cfg.FTPFolder,
			PublicBaseURL: cfg.FTPPublicBaseURL,
		}), nil
	}
	return upload.NewLocalBackend(cfg.UploadDir, cfg.UploadURLPrefix)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	incidentRepo, closeStore, err := newIncidentRepository(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize incident store: %v", err)
	}
	defer closeStore()

	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)
	webhook.NewWebhookWorker(redisClient, log, cfg).Start(ctx)

	backend, err := newUploadBackend(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize upload backend: %v", err)
	}
	pipeline := upload.NewPipeline(backend, cfg.MaxUploadBytes)

	incidentService := service.NewIncidentService(
		incidentRepo,
		repository.NewRedisIncidentCache(redisClient, cfg.CacheTTL),
		pipeline,
		webhookPublisher,
		log,
	)
	handler := v1.NewHandler(incidentService, log, cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewMetrics("incident_reporting", registry)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes + (1 << 20)
	router.Use(gin.Recovery(), v1.RequestLogger(log), httpMetrics.Middleware(), v1.CORSMiddleware(cfg))

	handler.RegisterRoutes(router)

	if cfg.UploadBackend == config.UploadBackendLocal {
		router.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}
	router.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	cancel()

	log.Info("Server gracefully stopped")
}
