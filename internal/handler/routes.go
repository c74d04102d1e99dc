package handler

import (
	mid "pos-service/internal/middleware"
	"pos-service/prometheus"

	"github.com/labstack/echo/v4"
)

// Handlers groups everything RegisterRoutes mounts
type Handlers struct {
	Health    *HealthHandler
	Login     *LoginHandler
	POS       *POSHandler
	Dashboard *DashboardHandler
}

// RegisterRoutes mounts the pages, their JSON twins and the operational endpoints.
// Session must already be in the middleware chain.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	e.GET("/health", h.Health.HealthCheck)

	// Login
	e.GET("/", h.Login.Show)
	e.POST("/login", h.Login.Login)
	e.GET("/logout", h.Login.Logout)
	e.POST("/api/session", h.Login.CreateSession)

	// Cashier screen
	pos := e.Group("/pos", mid.RequireCashier(mid.RedirectToLogin))
	pos.GET("", h.POS.Show)
	pos.POST("/cart/adjust", h.POS.Adjust)
	pos.POST("/cart/remove", h.POS.Remove)
	pos.POST("/checkout", h.POS.Checkout)

	posAPI := e.Group("/api", mid.RequireCashier(mid.JSONError))
	posAPI.GET("/products", h.POS.ListProducts)
	posAPI.GET("/cart", h.POS.GetCart)
	posAPI.POST("/cart/items", h.POS.AdjustItem)
	posAPI.DELETE("/cart/items/:product_id", h.POS.RemoveItem)
	posAPI.POST("/checkout", h.POS.CreateSale)

	// Admin dashboard
	dashboard := e.Group("/dashboard", mid.RequireAdmin(mid.RedirectToLogin))
	dashboard.GET("", h.Dashboard.Show)
	dashboard.POST("/orders/:id/cancel", h.Dashboard.Cancel)
	dashboard.GET("/export.xlsx", h.Dashboard.Export)

	adminAPI := e.Group("/api/admin", mid.RequireAdmin(mid.JSONError))
	adminAPI.GET("/dashboard", h.Dashboard.GetDashboard)
	adminAPI.GET("/orders/:id", h.Dashboard.GetOrder)
	adminAPI.POST("/orders/:id/cancel", h.Dashboard.CancelOrder)
}
