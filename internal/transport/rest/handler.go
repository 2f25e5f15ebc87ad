package rest

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hms/config"
	"hms/internal/service"
	"hms/internal/transport/websocket"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	services    *service.Services
	logger      *zap.Logger
	config      *config.Config
	scheduleHub *websocket.ScheduleHub
	db          Pinger
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, scheduleHub *websocket.ScheduleHub, db Pinger) *Handler {
	return &Handler{
		services:    services,
		logger:      logger,
		config:      config,
		scheduleHub: scheduleHub,
		db:          db,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.requestIDMiddleware())

	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(h.authMiddleware())
	{
		appointments := api.Group("/appointments")
		{
			appointments.GET("", h.getAppointments)
			appointments.POST("", h.createAppointment)
			appointments.GET("/options", h.getAppointmentOptions)
			appointments.POST("/validate", h.validateAppointment)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.PUT("/:id", h.updateAppointment)
			appointments.DELETE("/:id", h.deleteAppointment)
		}

		lookups := api.Group("/lookups")
		{
			lookups.GET("/patients", h.getPatientOptions)
			lookups.GET("/staff", h.getStaffOptions)
			lookups.GET("/rooms", h.getRoomOptions)
		}
	}

	// Websocket clients authenticate with a token query parameter.
	if h.scheduleHub != nil {
		router.GET("/ws/schedule", h.scheduleHub.HandleWebSocket)
	}
}
