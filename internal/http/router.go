package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies left nil disable their routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("module", "http")

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	// Multipart parts above this size spill to disk.
	router.MaxMultipartMemory = maxUpload

	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := router.Group("/api")

	// XML interchange endpoints
	if cfg.Interchange != nil {
		xmlController := NewXMLController(cfg.Interchange, cfg.Archive, cfg.TaskQueue, maxUpload, log)
		api.POST("/xml/import", xmlController.Import)
		api.GET("/xml/export", xmlController.Export)
		api.POST("/admin/purge", xmlController.Purge)
	}

	// Listing endpoints
	if cfg.Listings != nil {
		listings := NewListingsController(cfg.Listings, log)
		api.GET("/usuarios", listings.Users)
		api.GET("/usuarios/:email", listings.User)
		api.GET("/asientos", listings.Seats)
		api.GET("/asientos/:numero", listings.Seat)
		api.GET("/reservaciones", listings.Reservations)
		api.GET("/reservaciones/:id", listings.Reservation)
		api.POST("/reservaciones/:id/cancel", listings.CancelReservation)
	}

	if cfg.AuditEvents != nil {
		auditController := NewAuditController(cfg.AuditEvents, log)
		api.GET("/audit", auditController.GetAuditEvents)
		api.GET("/audit/:id", auditController.GetAuditEvent)
	}

	// Task status endpoint
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
