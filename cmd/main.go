package main

import (
	"net/http"

	"smartserve/internal/handler"
	mid "smartserve/internal/middleware"
	"smartserve/internal/realtime"
	"smartserve/pkg/config"
	"smartserve/pkg/database"
	"smartserve/pkg/jwtutil"
	"smartserve/pkg/logger"
	"smartserve/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting smartserve",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Realtime hub for per-user push delivery
	hub := realtime.New()
	handler.UseHub(hub)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)
	e.Use(logger.Middleware(log))

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Realtime channel (sockjs)
	rt := realtime.Handler(hub, appConfig.Realtime.SendBuffer)
	e.Any("/realtime", echo.WrapHandler(rt))
	e.Any("/realtime/*", echo.WrapHandler(rt))

	// Public API: customer-facing flows carry no session token
	api := e.Group("/api")
	api.POST("/signup", handler.Signup)
	api.POST("/login", handler.Login)
	api.GET("/menu/:userId", handler.ListMenu)
	api.GET("/validateQrMenu", handler.ValidateQRMenu)
	api.GET("/settings/by-menu/:menuId", handler.GetSettingsByMenu)
	api.POST("/orders/place", handler.PlaceOrder)
	api.GET("/orders/latest", handler.LatestPendingOrder)
	api.GET("/orders/:restaurant/:status", handler.ListOrdersByStatus)
	api.PUT("/orders/complete/:id", handler.CompleteOrder)
	api.POST("/notifications", handler.CreateNotification)
	api.POST("/notifications/send-to-staff", handler.SendToStaff)

	// Owner/staff API: requires a login token
	admin := e.Group("/api", mid.AuthMiddleware)
	admin.GET("/staff", handler.ListStaff)
	admin.GET("/tables", handler.ListTables)
	admin.POST("/staff/assign", handler.AssignTables)
	admin.GET("/notifications/:userId", handler.ListNotifications)
	admin.PUT("/notifications/mark-as-read/:userId", handler.MarkAllRead)
	admin.PUT("/notifications/mark-one-as-read/:id", handler.MarkOneRead)
	admin.DELETE("/notifications/:id", handler.DeleteNotification)
	admin.POST("/menu", handler.CreateMenuItem)
	admin.PUT("/menu/:userId", handler.ReplaceMenu)
	admin.DELETE("/menu/:id", handler.DeleteMenuItem)
	admin.POST("/qrcode/save", handler.SaveQRCode)
	admin.GET("/qrcode/:userId", handler.GetQRCode)
	admin.POST("/downloads", handler.SaveDownload)
	admin.GET("/downloads", handler.ListDownloads)
	admin.POST("/settings", handler.SaveSettings)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
