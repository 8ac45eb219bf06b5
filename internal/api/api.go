// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/api/handlers"
	"github.com/andresuchdata/shelfstock/backend-go/internal/api/middleware"
	"github.com/andresuchdata/shelfstock/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Services struct {
	Replenishment *service.ReplenishmentService
	Delivery      *service.DeliveryService
	Restock       *service.RestockService
	Dashboard     *service.DashboardService
}

type Options struct {
	AllowedOrigins []string
	// TracingService enables otelgin spans under this service name when set.
	TracingService string
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if opts.TracingService != "" {
		router.Use(otelgin.Middleware(opts.TracingService))
	}

	defaultOrigins := []string{"http://localhost:4200", "http://127.0.0.1:4200"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")

	if services == nil {
		return router
	}

	if services.Replenishment != nil && services.Delivery != nil {
		replenishmentHandler := handlers.NewReplenishmentHandler(services.Replenishment, services.Delivery)
		apiGroup.GET("/ProductShelf/predict-depletion", replenishmentHandler.PredictDepletion)
		apiGroup.GET("/ReplenishmentAlert/all", replenishmentHandler.ListAlerts)

		stockRequestGroup := apiGroup.Group("/StockRequest")
		{
			stockRequestGroup.POST("/create-from-alerts", replenishmentHandler.CreateRequestsFromAlerts)
			stockRequestGroup.GET("", replenishmentHandler.ListRequests)
			stockRequestGroup.GET("/:id", replenishmentHandler.GetRequest)
		}
	}

	if services.Delivery != nil {
		warehouseHandler := handlers.NewWarehouseHandler(services.Delivery)
		warehouseGroup := apiGroup.Group("/Warehouse")
		{
			warehouseGroup.PUT("/:id/dispatch", warehouseHandler.Dispatch)
			warehouseGroup.POST("/:id/mark-delivered", warehouseHandler.MarkDelivered)
			warehouseGroup.PUT("/:id/cancel", warehouseHandler.Cancel)
			warehouseGroup.GET("/:id/status-log", warehouseHandler.StatusLog)
		}
	}

	if services.Restock != nil {
		restockHandler := handlers.NewRestockHandler(services.Restock)
		restockGroup := apiGroup.Group("/RestockTask")
		{
			restockGroup.POST("/assign-tasks", restockHandler.AssignTasks)
			restockGroup.POST("/organize-product", restockHandler.OrganizeProduct)
			restockGroup.POST("/check-status/:taskId", restockHandler.CheckStatus)
			restockGroup.GET("/staff/:staffId", restockHandler.ListByStaff)
		}
	}

	if services.Dashboard != nil {
		dashboardHandler := handlers.NewDashboardHandler(services.Dashboard)
		dashboardGroup := apiGroup.Group("/Dashboard")
		{
			dashboardGroup.GET("", dashboardHandler.GetDashboard)
			dashboardGroup.GET("/summary", dashboardHandler.GetSummary)
			dashboardGroup.GET("/shelves", dashboardHandler.GetShelves)
			dashboardGroup.GET("/stockouts", dashboardHandler.GetStockouts)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
