package main

import (
	"net/http"

	"pos-service/internal/checkout"
	"pos-service/internal/handler"
	"pos-service/internal/ledger"
	mid "pos-service/internal/middleware"
	"pos-service/internal/reservation"
	"pos-service/internal/store"
	"pos-service/pkg/config"
	"pos-service/pkg/database"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"
	"pos-service/prometheus"

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

	log.Info("Starting pos-service",
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

	// Wire the engines over the shared store
	st := store.NewGorm(database.GetDB())
	sessions := checkout.NewSessions()
	committer := checkout.NewCommitter(st, log)
	clientLedger := ledger.New(st, log)
	coordinator := reservation.New(st, log)

	posHandler := handler.NewPOSHandler(sessions, committer, st)
	clientHandler := handler.NewClientHandler(st, clientLedger, coordinator)
	productHandler := handler.NewProductHandler(st, coordinator)
	saleHandler := handler.NewSaleHandler(st)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Routes
	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// POS checkout routes
	posAPI := e.Group("/api/pos", mid.AuthMiddleware)
	posAPI.POST("/carts", posHandler.OpenCart)
	posAPI.GET("/carts/:id", posHandler.GetCart)
	posAPI.DELETE("/carts/:id", posHandler.CancelCart)
	posAPI.POST("/carts/:id/items", posHandler.AddItem)
	posAPI.PUT("/carts/:id/items/:productId", posHandler.UpdateItem)
	posAPI.DELETE("/carts/:id/items/:productId", posHandler.RemoveItem)
	posAPI.PUT("/carts/:id/items/:productId/discount", posHandler.ApplyItemDiscount)
	posAPI.PUT("/carts/:id/discount", posHandler.ApplyOrderDiscount)
	posAPI.POST("/carts/:id/checkout", posHandler.Checkout)

	// Product API routes
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", productHandler.ListProducts)
	productAPI.GET("/:id", productHandler.GetProduct)
	productAPI.POST("", productHandler.CreateProduct)
	productAPI.PUT("/:id", productHandler.UpdateProduct)
	productAPI.DELETE("/:id", productHandler.DeleteProduct)
	productAPI.POST("/:id/reserve", productHandler.Reserve)
	productAPI.POST("/:id/liquidate", productHandler.Liquidate)

	// Client API routes
	clientAPI := e.Group("/api/clients", mid.AuthMiddleware)
	clientAPI.GET("", clientHandler.ListClients)
	clientAPI.GET("/:id", clientHandler.GetClient)
	clientAPI.POST("", clientHandler.CreateClient)
	clientAPI.PUT("/:id", clientHandler.UpdateClient)
	clientAPI.DELETE("/:id", clientHandler.DeleteClient)
	clientAPI.POST("/:id/payments", clientHandler.AddPayment)
	clientAPI.GET("/:id/transactions", clientHandler.ListTransactions)
	clientAPI.GET("/:id/reservations", clientHandler.ListReservations)
	clientAPI.POST("/:id/liquidate-all", clientHandler.LiquidateAll)

	// Sales ledger routes
	saleAPI := e.Group("/api/sales", mid.AuthMiddleware)
	saleAPI.GET("", saleHandler.ListSales)
	saleAPI.GET("/:id", saleHandler.GetSale)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
