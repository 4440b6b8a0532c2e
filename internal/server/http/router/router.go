package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/ticketmart/internal/metrics"
	"github.com/polkiloo/ticketmart/internal/server/http/handlers"
	"github.com/polkiloo/ticketmart/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.Marketplace, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(middleware.DefaultMaxBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	ticketHandler := handlers.NewTicketHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/health", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	api.GET("/tickets", ticketHandler.ListAvailable)
	api.GET("/tickets/search", ticketHandler.Search)
	api.GET("/tickets/happening-between", ticketHandler.HappeningBetween)
	api.GET("/tickets/:id", ticketHandler.Get)
	api.GET("/tickets/:id/active-orders", ticketHandler.ActiveOrders)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	authed.POST("/tickets", ticketHandler.Create)
	authed.PUT("/tickets/:id", ticketHandler.Update)
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.POST("/orders/:id/approve", orderHandler.Approve)
	authed.POST("/orders/:id/reject", orderHandler.Reject)
	authed.POST("/orders/:id/pay", orderHandler.Pay)
	authed.GET("/payments/:ref/order", orderHandler.ByPaymentRef)

	user := authed.Group("/user")
	user.GET("/orders", orderHandler.ListPurchases)
	user.GET("/sales", orderHandler.ListSales)
	user.GET("/tickets", ticketHandler.ListMine)

	return engine
}
