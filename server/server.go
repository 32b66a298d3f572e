package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecotracker/cache"
	"ecotracker/confs"
	"ecotracker/db"
	"ecotracker/handlers"
	httpHandler "ecotracker/handlers/http"
	"ecotracker/repositories"
	"ecotracker/services"
	"ecotracker/usecases"
	"ecotracker/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	app  *gin.Engine
	http *http.Server
	db   db.Database
	log  *logrus.Entry

	Hub        *ws.Hub
	Cache      *cache.ReadingCache
	Forecaster *services.Forecaster
	Pipeline   *usecases.PipelineUseCase
	Devices    *usecases.DeviceUseCase
	Auth       *usecases.AuthUseCase
}

// NewServer wires repositories, use cases and routes on top of database.
func NewServer(cfg *confs.Config, database db.Database, log *logrus.Entry) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		log.Debugf("Endpoint: %-6s %s", httpMethod, absolutePath)
	}

	s := &Server{
		app: gin.New(),
		db:  database,
		log: log,
	}

	// Initialize repositories
	deviceRepo := repositories.NewDevicePgRepository(database)
	readingRepo := repositories.NewSensorReadingPgRepository(database)
	alertRepo := repositories.NewAlertPgRepository(database)
	predictionRepo := repositories.NewPredictionPgRepository(database)
	userRepo := repositories.NewUserPgRepository(database)

	s.Cache = cache.NewReadingCache()
	s.Forecaster = services.NewForecaster()
	s.Hub = ws.NewHub(log.WithField("component", "ws"), func(deviceID string) (interface{}, bool) {
		r, ok := s.Cache.Get(deviceID)
		if !ok {
			return nil, false
		}
		return usecases.NewLiveReading(r), true
	})

	// Initialize use cases
	s.Pipeline = usecases.NewPipelineUseCase(deviceRepo, readingRepo, alertRepo, predictionRepo, s.Forecaster, s.Cache, s.Hub, log.WithField("component", "pipeline"))
	s.Devices = usecases.NewDeviceUseCase(deviceRepo, readingRepo, alertRepo, predictionRepo, s.Cache, log.WithField("component", "devices"))
	s.Auth = usecases.NewAuthUseCase(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpirationMinutes)*time.Minute, log.WithField("component", "auth"))

	s.routes(cfg)

	s.http = &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           s.app,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(cfg *confs.Config) {
	// Setup CORS middleware
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "macaddress", "mac-address"}

	s.app.Use(
		gin.Recovery(),
		cors.New(corsConfig),
		httpHandler.RequestLogger(s.log.WithField("component", "http")),
	)

	// Setup healthcheck route
	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	authHandler := httpHandler.NewAuthHandler(s.Auth, s.log)
	deviceHandler := httpHandler.NewDeviceHandler(s.Devices, s.log)
	ingestHandler := httpHandler.NewIngestHandler(s.Pipeline, s.log)
	predictionHandler := httpHandler.NewPredictionHandler(s.Devices, s.Pipeline, s.Forecaster, s.log)
	wsHandler := handlers.NewWSHandler(s.Hub, cfg.CORSAllowedOrigins, s.log.WithField("component", "ws"))
	statsHandler := handlers.NewStatsHandler(s.Hub, s.Cache, s.Devices, s.log)

	requireAuth := httpHandler.RequireAuth(s.Auth)

	api := s.app.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/user", requireAuth, authHandler.CurrentUser)
		}

		// Device firmware posts readings here, identified by MAC header
		api.POST("/esp/data", ingestHandler.PostReading)

		devices := api.Group("/devices", requireAuth)
		{
			devices.GET("", deviceHandler.GetDevices)
			devices.POST("", deviceHandler.CreateDevice)
		}

		sensors := api.Group("/sensors", requireAuth)
		{
			sensors.GET("/:deviceId/latest", deviceHandler.GetLatestReading)
			sensors.GET("/:deviceId/history", deviceHandler.GetHistory)
			sensors.GET("/:deviceId/export", deviceHandler.ExportHistory)
		}

		alerts := api.Group("/alerts", requireAuth)
		{
			alerts.GET("/:deviceId", deviceHandler.GetUnreadAlerts)
			alerts.PATCH("/:alertId/read", deviceHandler.MarkAlertRead)
		}

		predictions := api.Group("/predictions", requireAuth)
		{
			predictions.POST("/:deviceId/generate", predictionHandler.Generate)
			predictions.GET("/:deviceId/:type", predictionHandler.GetPredictions)
		}

		api.GET("/ml/model", requireAuth, predictionHandler.GetModel)
		api.GET("/stats", requireAuth, statsHandler.GetStats)
	}

	s.app.GET("/ws", wsHandler.HandleDashboardWS)
}

func (s *Server) Handler() http.Handler { return s.app }

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.Infof("listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.Hub.Close()
	return err
}
