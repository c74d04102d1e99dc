package middleware

import (
	"net/http"
	"net/url"

	"pos-service/pkg/logger"
	"pos-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Messages shown when a guard turns a request away
const (
	MsgLoginRequired = "Seleccioná un local para continuar."
	MsgCashierOnly   = "El administrador no opera la caja. Elegí un local."
	MsgAdminOnly     = "Acceso denegado. Solo administradores."
)

// DenyFunc writes the response for a rejected request
type DenyFunc func(c echo.Context, status int, message string) error

// RedirectToLogin sends browsers back to the login screen with an alert
func RedirectToLogin(c echo.Context, _ int, message string) error {
	return c.Redirect(http.StatusSeeOther, "/?alert="+url.QueryEscape(message))
}

// JSONError answers API clients with the status and an error body
func JSONError(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"error": message})
}

// RequireCashier admits store identities only
func RequireCashier(deny DenyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			id, ok := GetIdentity(c)
			if !ok {
				log.Info("Cashier route without identity", zap.String("path", c.Path()))
				prometheus.RecordGuardRejection("cashier")
				return deny(c, http.StatusUnauthorized, MsgLoginRequired)
			}
			if _, isStore := id.StoreID(); !isStore {
				log.Warn("Cashier route with non-store identity", zap.String("identity", string(id)))
				prometheus.RecordGuardRejection("cashier")
				return deny(c, http.StatusForbidden, MsgCashierOnly)
			}

			return next(c)
		}
	}
}

// RequireAdmin admits the administrator identity only
func RequireAdmin(deny DenyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			id, ok := GetIdentity(c)
			if !ok {
				log.Info("Admin route without identity", zap.String("path", c.Path()))
				prometheus.RecordGuardRejection("admin")
				return deny(c, http.StatusUnauthorized, MsgAdminOnly)
			}
			if !id.IsAdmin() {
				log.Warn("Admin route with non-admin identity", zap.String("identity", string(id)))
				prometheus.RecordGuardRejection("admin")
				return deny(c, http.StatusForbidden, MsgAdminOnly)
			}

			return next(c)
		}
	}
}
