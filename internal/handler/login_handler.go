package handler

import (
	"errors"
	"net/http"

	"pos-service/internal/identity"
	mid "pos-service/internal/middleware"
	"pos-service/internal/service"
	"pos-service/pkg/logger"
	"pos-service/prometheus"
	"pos-service/web"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidAdminPassword = errors.New("contraseña de administrador incorrecta")

type loginPage struct {
	Alert                 string
	Error                 string
	Choices               []identity.Choice
	Selected              identity.Identity
	AdminPasswordRequired bool
}

// SessionRequest is the body of POST /api/session
type SessionRequest struct {
	Identity string `json:"identity" form:"identity"`
	Password string `json:"password" form:"password"`
}

// LoginHandler serves the identity selector. When adminPasswordHash is set the admin
// identity additionally requires the matching password.
type LoginHandler struct {
	checkout          *service.CheckoutService
	adminPasswordHash string
}

// NewLoginHandler creates a login handler
func NewLoginHandler(checkout *service.CheckoutService, adminPasswordHash string) *LoginHandler {
	return &LoginHandler{checkout: checkout, adminPasswordHash: adminPasswordHash}
}

// Show renders the selector, with the alert a guard redirect may carry
func (h *LoginHandler) Show(c echo.Context) error {
	page := h.page()
	page.Alert = c.QueryParam("alert")
	if id, ok := mid.GetIdentity(c); ok {
		page.Selected = id
	}
	return c.Render(http.StatusOK, web.PageLogin, page)
}

// Login stores the chosen identity in a new session and opens its home screen
func (h *LoginHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login form", zap.Error(err))
	}

	id, err := h.authenticate(c, req)
	if err != nil {
		page := h.page()
		page.Error = err.Error()
		page.Selected = identity.Identity(req.Identity)
		return c.Render(loginStatus(err), web.PageLogin, page)
	}

	h.dropPreviousSession(c)
	if _, err := mid.StartSession(c, id); err != nil {
		log.Error("Failed to issue session token", zap.Error(err))
		page := h.page()
		page.Error = err.Error()
		return c.Render(http.StatusInternalServerError, web.PageLogin, page)
	}

	return c.Redirect(http.StatusSeeOther, id.Home())
}

// CreateSession is the API twin of Login and returns the bearer token
func (h *LoginHandler) CreateSession(c echo.Context) error {
	log := logger.FromEcho(c)

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse session request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	id, err := h.authenticate(c, req)
	if err != nil {
		return c.JSON(loginStatus(err), echo.Map{"error": err.Error()})
	}

	h.dropPreviousSession(c)
	token, err := mid.StartSession(c, id)
	if err != nil {
		log.Error("Failed to issue session token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"token":    token,
		"identity": id,
		"label":    id.Label(),
		"home":     id.Home(),
	})
}

// Logout drops the session cart and the session cookie
func (h *LoginHandler) Logout(c echo.Context) error {
	h.dropPreviousSession(c)
	mid.EndSession(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *LoginHandler) dropPreviousSession(c echo.Context) {
	sessionID := mid.GetSessionID(c)
	if sessionID == "" {
		return
	}
	if err := h.checkout.ClearSession(c.Request().Context(), sessionID); err != nil {
		logger.FromEcho(c).Warn("Failed to clear session cart", zap.Error(err))
	}
}

func (h *LoginHandler) authenticate(c echo.Context, req SessionRequest) (identity.Identity, error) {
	log := logger.FromEcho(c)

	id, err := identity.Parse(req.Identity)
	if err != nil {
		log.Warn("Login with unknown identity", zap.String("identity", req.Identity))
		prometheus.RecordLogin("unknown", "rejected")
		return "", err
	}

	role := "cashier"
	if id.IsAdmin() {
		role = "admin"
		if h.adminPasswordHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(req.Password)); err != nil {
				log.Warn("Invalid admin password")
				prometheus.RecordLogin(role, "rejected")
				return "", errInvalidAdminPassword
			}
		}
	}

	prometheus.RecordLogin(role, "ok")
	log.Info("Identity selected", zap.String("identity", string(id)))
	return id, nil
}

func (h *LoginHandler) page() loginPage {
	return loginPage{
		Choices:               identity.Choices(),
		AdminPasswordRequired: h.adminPasswordHash != "",
	}
}

func loginStatus(err error) int {
	if errors.Is(err, errInvalidAdminPassword) {
		return http.StatusUnauthorized
	}
	return statusFor(err)
}
