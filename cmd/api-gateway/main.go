// The api-gateway command runs the operating room scheduling API.
//
// @title Operating Room Scheduling API
// @version 1.0
// @description Two phase surgical scheduling: room and day distribution via CP-SAT, then greedy patient to slot matching.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/operank/scheduling-api/api/swagger"
	"github.com/operank/scheduling-api/internal/handler"
	"github.com/operank/scheduling-api/internal/middleware"
	"github.com/operank/scheduling-api/internal/repository"
	"github.com/operank/scheduling-api/internal/service"
	"github.com/operank/scheduling-api/internal/solver/cpsat"
	"github.com/operank/scheduling-api/pkg/cache"
	"github.com/operank/scheduling-api/pkg/config"
	"github.com/operank/scheduling-api/pkg/database"
	"github.com/operank/scheduling-api/pkg/logger"
	"github.com/operank/scheduling-api/pkg/middleware/cors"
	"github.com/operank/scheduling-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpMetrics := middleware.NewHTTPMetrics(registry)
	metricsService := service.NewMetricsService(registry)

	patientRepo := repository.NewPatientRepository(db)
	surgeryRepo := repository.NewSurgeryRepository(db)
	roomRepo := repository.NewRoomRepository(db, repository.ParseWeekdays(cfg.Scheduling.DefaultNonWorking))
	surgeonRepo := repository.NewSurgeonRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	runRepo := repository.NewRunRepository(db)

	cpSolver := cpsat.New(cfg.Solver, log.Named("cpsat"))

	distribution := service.NewDistributionService(
		cpSolver, cpSolver, log.Named("distribution"),
		cfg.Scheduling.WorkDayMinutes, cfg.Scheduling.DayStartHour,
	)
	assignment := service.NewAssignmentService(
		log.Named("assignment"),
		rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg.Scheduling.MaxSuggestions,
	)
	scheduling := service.NewSchedulingService(
		distribution, assignment, metricsService, log.Named("scheduling"),
		patientRepo, surgeryRepo, roomRepo, surgeonRepo, catalogRepo, runRepo,
	)
	exporter := service.NewExportService(log.Named("export"))

	schedulingHandler := handler.NewSchedulingHandler(scheduling)
	scheduleHandler := handler.NewScheduleHandler(scheduling, exporter, redisClient, cfg.Scheduling.ScheduleCacheTTL, log.Named("schedule"))
	healthHandler := handler.NewHealthHandler(db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(log.Named("http")))
	router.Use(cors.New(cfg.CORS.AllowedOrigins))
	router.Use(httpMetrics.Handler())

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group(cfg.APIPrefix)
	api.Use(middleware.JWTAuth(cfg.JWT))
	{
		api.POST("/scheduling/runs", schedulingHandler.RunSchedule)
		api.GET("/scheduling/runs/:id", schedulingHandler.RunReport)
		api.POST("/scheduling/suggestions", schedulingHandler.Suggest)
		api.POST("/scheduling/commitments", schedulingHandler.Commit)

		api.GET("/rooms/:id/schedule", scheduleHandler.RoomSchedule)
		if cfg.Export.Enabled {
			api.GET("/schedule/export", scheduleHandler.ExportSchedule)
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
