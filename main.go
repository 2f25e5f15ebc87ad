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
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hms/config"
	_ "hms/docs"
	"hms/internal/metrics"
	"hms/internal/repository"
	"hms/internal/service"
	"hms/internal/transport/rest"
	"hms/internal/transport/websocket"
	"hms/pkg/database"
	"hms/pkg/logger"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title HMS Scheduling API
// @version 1.0
// @description Appointment scheduling with staff and room conflict detection

// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Environment, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("running database migrations", zap.String("dir", cfg.Postgres.MigrationsDir))
	if err := database.RunMigrations(context.Background(), db, cfg.Postgres.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repos := repository.NewRepositories(db)
	schedulingMetrics := metrics.NewSchedulingMetrics(prometheus.DefaultRegisterer)

	// The hub needs the auth service and the services need the hub as
	// their notifier, so the hub is built on the token verifier alone.
	authService := service.NewAuthService(cfg.JWT, log)
	scheduleHub := websocket.NewScheduleHub(authService, log)
	go scheduleHub.Run(ctx)

	services := service.NewServices(service.Deps{
		Repos:    repos,
		Logger:   log,
		Config:   cfg,
		Notifier: scheduleHub,
		Metrics:  schedulingMetrics,
		Clock:    time.Now,
	})

	handler := rest.NewHandler(services, log, cfg, scheduleHub, db)

	router := gin.New()
	router.Use(gin.Recovery())

	handler.InitRoutes(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderMB << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	log.Info("server started", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("failed to stop server", zap.Error(err))
	}

	log.Info("server stopped")
}
