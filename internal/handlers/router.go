package handlers

import (
	"net/http"

	"clinic_queue/internal/auth"
	"clinic_queue/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterConfig struct {
	Queues *Handler
	Auth   *AuthHandler
	Issuer *auth.Issuer
	Hub    *ws.Hub
	// Gatherer отдаётся на /metrics; nil отключает эндпоинт.
	Gatherer prometheus.Gatherer
}

// NewRouter собирает gin.Engine со всеми маршрутами сервиса.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", cfg.Auth.Login)
		authGroup.POST("/register", cfg.Auth.Register)
		authGroup.POST("/refresh", cfg.Auth.RefreshToken)
	}

	r.GET("/ws", cfg.Hub.ServeWS)

	h := cfg.Queues
	api := r.Group("/api")
	{
		api.GET("/queues", h.ListQueues)
		api.GET("/queues/:id", h.QueueStatus)
		api.GET("/queues/:id/ws", cfg.Hub.ServeQueueWS)
		api.GET("/queue-items/:id/position", h.EntryPosition)
		api.GET("/doctors/:id/stats", h.DoctorStats)
	}

	protected := api.Group("", auth.AuthMiddleware(cfg.Issuer))
	{
		protected.POST("/queues", h.CreateQueue)
		protected.DELETE("/queues/:id", h.DeleteQueue)
		protected.POST("/queues/:id/add-patient", h.AddPatient)
		protected.POST("/queues/:id/call-next", h.CallNext)
		protected.POST("/queue-items/:id/complete", h.CompleteConsultation)
		protected.POST("/queue-items/:id/cancel", h.CancelConsultation)
		protected.POST("/doctors", h.CreateDoctor)
		protected.PATCH("/doctors/:id/availability", h.SetAvailability)
		protected.POST("/patients", h.CreatePatient)
	}

	return r
}
