package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"pos-service/internal/cart"
	"pos-service/internal/identity"
	mid "pos-service/internal/middleware"
	"pos-service/internal/model"
	"pos-service/internal/service"
	"pos-service/pkg/logger"
	"pos-service/web"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type posPage struct {
	Identity  identity.Identity
	StoreName string
	Query     string
	Products  []model.Product
	Cart      *cart.Cart
	Notice    string
	Error     string
}

// CartItemRequest is the body of POST /api/cart/items
type CartItemRequest struct {
	ProductID uint `json:"product_id"`
	Delta     int  `json:"delta"`
}

// CartResponse is the JSON view of a cart
type CartResponse struct {
	Lines []cart.Line     `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// ReceiptResponse is returned after a successful checkout
type ReceiptResponse struct {
	*service.Receipt
	Message string `json:"message"`
}

// POSHandler serves the cashier screen. Routes are guarded by RequireCashier.
type POSHandler struct {
	checkout *service.CheckoutService
}

// NewPOSHandler creates a cashier handler
func NewPOSHandler(checkout *service.CheckoutService) *POSHandler {
	return &POSHandler{checkout: checkout}
}

// Show renders the catalog filtered by ?q= and the session cart
func (h *POSHandler) Show(c echo.Context) error {
	page := h.page(c, c.QueryParam("q"))
	page.Notice = c.QueryParam("notice")
	page.Error = c.QueryParam("error")
	return c.Render(http.StatusOK, web.PagePOS, page)
}

// Adjust applies a quantity delta from the product grid or the cart controls
func (h *POSHandler) Adjust(c echo.Context) error {
	query := c.FormValue("q")

	productID, err := parseProductID(c.FormValue("product_id"))
	if err != nil {
		return h.redirect(c, query, "", err)
	}
	delta, err := strconv.Atoi(c.FormValue("delta"))
	if err != nil {
		return h.redirect(c, query, "", fmt.Errorf("%w: delta", errBadRequest))
	}

	_, err = h.checkout.AdjustQuantity(c.Request().Context(), mid.GetSessionID(c), productID, delta)
	return h.redirect(c, query, "", err)
}

// Remove drops a cart line
func (h *POSHandler) Remove(c echo.Context) error {
	query := c.FormValue("q")

	productID, err := parseProductID(c.FormValue("product_id"))
	if err != nil {
		return h.redirect(c, query, "", err)
	}

	_, err = h.checkout.RemoveItem(c.Request().Context(), mid.GetSessionID(c), productID)
	return h.redirect(c, query, "", err)
}

// Checkout finalizes the sale. Failures re-render the screen with the raw error and
// leave the cart as it was.
func (h *POSHandler) Checkout(c echo.Context) error {
	log := logger.FromEcho(c)
	storeID := cashierStore(c)

	receipt, err := h.checkout.FinalizeSale(c.Request().Context(), mid.GetSessionID(c), storeID)
	if err != nil {
		log.Warn("Checkout failed", zap.Error(err))
		page := h.page(c, "")
		page.Error = err.Error()
		return c.Render(statusFor(err), web.PagePOS, page)
	}

	return h.redirect(c, "", saleMessage(receipt), nil)
}

// ListProducts handles GET /api/products
func (h *POSHandler) ListProducts(c echo.Context) error {
	products, err := h.checkout.Catalog(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		logger.FromEcho(c).Error("Failed to list products", zap.Error(err))
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetCart handles GET /api/cart
func (h *POSHandler) GetCart(c echo.Context) error {
	current, err := h.checkout.Cart(c.Request().Context(), mid.GetSessionID(c))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, cartResponse(current))
}

// AdjustItem handles POST /api/cart/items
func (h *POSHandler) AdjustItem(c echo.Context) error {
	var req CartItemRequest
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		return jsonError(c, fmt.Errorf("%w: product_id and delta are required", errBadRequest))
	}

	updated, err := h.checkout.AdjustQuantity(c.Request().Context(), mid.GetSessionID(c), req.ProductID, req.Delta)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, cartResponse(updated))
}

// RemoveItem handles DELETE /api/cart/items/:product_id
func (h *POSHandler) RemoveItem(c echo.Context) error {
	productID, err := parseProductID(c.Param("product_id"))
	if err != nil {
		return jsonError(c, err)
	}

	updated, err := h.checkout.RemoveItem(c.Request().Context(), mid.GetSessionID(c), productID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, cartResponse(updated))
}

// CreateSale handles POST /api/checkout
func (h *POSHandler) CreateSale(c echo.Context) error {
	receipt, err := h.checkout.FinalizeSale(c.Request().Context(), mid.GetSessionID(c), cashierStore(c))
	if err != nil {
		logger.FromEcho(c).Warn("Checkout failed", zap.Error(err))
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, ReceiptResponse{Receipt: receipt, Message: saleMessage(receipt)})
}

// page loads what the screen shows. Read failures leave the affected part empty.
func (h *POSHandler) page(c echo.Context, query string) posPage {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	id, _ := mid.GetIdentity(c)
	page := posPage{
		Identity:  id,
		StoreName: cashierStore(c).Name(),
		Query:     query,
		Cart:      cart.New(),
	}

	products, err := h.checkout.Catalog(ctx, query)
	if err != nil {
		log.Error("Failed to load catalog", zap.Error(err))
	}
	page.Products = products

	current, err := h.checkout.Cart(ctx, mid.GetSessionID(c))
	if err != nil {
		log.Error("Failed to load cart", zap.Error(err))
	} else {
		page.Cart = current
	}
	return page
}

func (h *POSHandler) redirect(c echo.Context, query, notice string, err error) error {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if notice != "" {
		params.Set("notice", notice)
	}
	if err != nil {
		logger.FromEcho(c).Warn("Cart update failed", zap.Error(err))
		params.Set("error", err.Error())
	}

	target := "/pos"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func cashierStore(c echo.Context) model.StoreID {
	id, _ := mid.GetIdentity(c)
	storeID, _ := id.StoreID()
	return storeID
}

func cartResponse(c *cart.Cart) CartResponse {
	return CartResponse{Lines: c.Lines, Total: c.Total(), Count: c.Count()}
}

func parseProductID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: product_id %q", errBadRequest, raw)
	}
	return uint(id), nil
}

func saleMessage(r *service.Receipt) string {
	return fmt.Sprintf("¡Venta Exitosa! Total: %s. Ticket #%d", web.Money(r.Total), r.OrderID)
}
