package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"pos-service/internal/model"
	"pos-service/internal/sales"
	"pos-service/internal/service"
	"pos-service/pkg/logger"
	"pos-service/web"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type dashboardPage struct {
	Summary       sales.Summary
	Store         string
	Stores        []model.Store
	GlobalRevenue decimal.Decimal
	Notice        string
	Error         string
	LoadFailed    bool
}

// DashboardResponse is the JSON view of the dashboard
type DashboardResponse struct {
	sales.Summary
	Filter   string `json:"filter"`
	Degraded bool   `json:"degraded,omitempty"`
}

// CancelRequest is the body of POST /api/admin/orders/:id/cancel
type CancelRequest struct {
	Confirm bool `json:"confirm"`
}

// DashboardHandler serves the administrator screen. Routes are guarded by RequireAdmin.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Show renders the dashboard for ?store=
func (h *DashboardHandler) Show(c echo.Context) error {
	filter, err := sales.ParseStoreFilter(c.QueryParam("store"))
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}

	page := h.page(c, filter)
	page.Notice = c.QueryParam("notice")
	if err != nil {
		page.Error = err.Error()
	}
	return c.Render(status, web.PageDashboard, page)
}

// Cancel voids a sale after the confirmation dialog, then reloads the dashboard
func (h *DashboardHandler) Cancel(c echo.Context) error {
	filter, _ := sales.ParseStoreFilter(c.FormValue("store"))

	id, err := parseOrderID(c.Param("id"))
	if err == nil {
		err = h.dashboard.CancelSale(c.Request().Context(), id, c.FormValue("confirm") == "yes")
	}
	if err != nil {
		page := h.page(c, filter)
		page.Error = err.Error()
		return c.Render(statusFor(err), web.PageDashboard, page)
	}

	params := url.Values{}
	params.Set("store", filter.String())
	params.Set("notice", fmt.Sprintf("Venta #%d anulada", id))
	return c.Redirect(http.StatusSeeOther, "/dashboard?"+params.Encode())
}

// Export downloads the filtered history as an Excel workbook
func (h *DashboardHandler) Export(c echo.Context) error {
	filter, err := sales.ParseStoreFilter(c.QueryParam("store"))
	if err != nil {
		return jsonError(c, err)
	}

	data, err := h.dashboard.Export(c.Request().Context(), filter)
	if err != nil {
		logger.FromEcho(c).Error("Failed to export sales", zap.Error(err))
		return jsonError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "ventas-"+filter.String()+".xlsx"))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// GetDashboard handles GET /api/admin/dashboard
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	filter, err := sales.ParseStoreFilter(c.QueryParam("store"))
	if err != nil {
		return jsonError(c, err)
	}

	summary, err := h.dashboard.Load(c.Request().Context(), filter)
	return c.JSON(http.StatusOK, DashboardResponse{
		Summary:  summary,
		Filter:   filter.String(),
		Degraded: err != nil,
	})
}

// GetOrder handles GET /api/admin/orders/:id
func (h *DashboardHandler) GetOrder(c echo.Context) error {
	id, err := parseOrderID(c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}

	order, err := h.dashboard.Order(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder handles POST /api/admin/orders/:id/cancel
func (h *DashboardHandler) CancelOrder(c echo.Context) error {
	id, err := parseOrderID(c.Param("id"))
	if err != nil {
		return jsonError(c, err)
	}

	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, fmt.Errorf("%w: %v", errBadRequest, err))
	}

	if err := h.dashboard.CancelSale(c.Request().Context(), id, req.Confirm); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order_id": id,
		"status":   model.StatusCancelled,
		"message":  fmt.Sprintf("Venta #%d anulada", id),
	})
}

// page loads the summary. A failed read renders the empty state with a notice.
func (h *DashboardHandler) page(c echo.Context, filter sales.StoreFilter) dashboardPage {
	summary, err := h.dashboard.Load(c.Request().Context(), filter)

	global := decimal.Zero
	for _, s := range summary.RevenueByStore {
		global = global.Add(s.Total)
	}

	return dashboardPage{
		Summary:       summary,
		Store:         filter.String(),
		Stores:        model.Stores,
		GlobalRevenue: global,
		LoadFailed:    err != nil,
	}
}

func parseOrderID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: id %q", errBadRequest, raw)
	}
	return uint(id), nil
}
