package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docaudit/docs"
	"docaudit/internal/config"
	"docaudit/internal/database"
	"docaudit/internal/database/migration"
	handlers "docaudit/internal/http/handler"
	"docaudit/internal/http/middleware"
	"docaudit/internal/logger"
	"docaudit/internal/ocr"
	"docaudit/internal/otel"
	"docaudit/internal/repository/postgres"
	"docaudit/internal/service"
	"docaudit/internal/storage"
)

// @title Document Audit API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.Timezone)
	defer log.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register service metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}

	docRepo := postgres.NewDocumentPostgres(db)
	parsedRepo := postgres.NewParsedDataPostgres(db)
	finRepo := postgres.NewFinancialPostgres(db)
	complianceRepo := postgres.NewCompliancePostgres(db)
	workspaceRepo := postgres.NewWorkspacePostgres(db)

	auditSvc := service.NewAuditService(postgres.NewAuditPostgres(db), log)
	userSvc := service.NewUserService(postgres.NewUserPostgres(db), auditSvc, cfg.Cache.RoleCacheSize, cfg.Cache.RoleCacheTTL, cfg.Auth.BootstrapAdmins...)

	svc := handlers.Services{
		Documents: service.NewDocumentService(objStore, docRepo, workspaceRepo, userSvc, auditSvc, cfg.MinIO.PresignExpiry),
		Processing: service.NewProcessingService(service.ProcessingDeps{
			Documents: docRepo,
			Parsed:    parsedRepo,
			Financial: finRepo,
			Store:     objStore,
			Extractor: ocr.NewRouter(cfg.OCR.Language, cfg.OCR.MaxBytes),
			Audit:     auditSvc,
			Metrics:   metrics,
			Log:       log,
			MaxBytes:  cfg.OCR.MaxBytes,
		}),
		Compliance:  service.NewComplianceService(complianceRepo, docRepo, parsedRepo, finRepo, auditSvc, metrics),
		Risk:        service.NewRiskService(postgres.NewRiskPostgres(db), docRepo, complianceRepo, parsedRepo, finRepo, auditSvc),
		Workflows:   service.NewWorkflowService(postgres.NewWorkflowPostgres(db), docRepo, userSvc, auditSvc),
		Workspaces:  service.NewWorkspaceService(workspaceRepo, userSvc, auditSvc),
		Users:       userSvc,
		Audit:       auditSvc,
		ObjectStore: objStore,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.OCR.MaxBytes) + 1<<20,
	})

	// RequestID runs first so every later middleware and log line carries it.
	app.Use(middleware.RequestID())
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(httpMetrics.Handler())
	app.Use(middleware.Logger(log))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	auth := middleware.Auth(middleware.AuthConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
	})
	handlers.RegisterRoutes(app, db, svc, auth)

	// Swagger UI with dynamic host and scheme
	docs.SwaggerInfo.Host = cfg.AppHost
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		if host := c.Get("Host"); host != "" {
			docs.SwaggerInfo.Host = host
		}
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("tracing shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
