package middleware

import (
	"net/http"
	"strings"

	"pos-service/internal/identity"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionCookie holds the signed active identity of a browser session
const SessionCookie = "active_identity"

const (
	identityKey  = "identity"
	sessionIDKey = "session_id"
)

// Session resolves the active identity from the session cookie or a Bearer token.
// A missing, expired or tampered token leaves the request without identity.
func Session(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := sessionToken(c)
		if token == "" {
			return next(c)
		}

		log := logger.FromEcho(c)
		claims, err := jwtutil.ValidateToken(token)
		if err != nil {
			log.Debug("Ignoring invalid session token", zap.Error(err))
			return next(c)
		}
		id, err := identity.Parse(claims.Identity)
		if err != nil || claims.SessionID == "" {
			log.Warn("Ignoring session with unknown identity", zap.String("identity", claims.Identity))
			return next(c)
		}

		c.Set(identityKey, id)
		c.Set(sessionIDKey, claims.SessionID)
		log = log.With(zap.String("identity", string(id)), zap.String("session_id", claims.SessionID))
		c.Set("logger", log)
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), log)))

		return next(c)
	}
}

func sessionToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if len(header) > 7 && strings.ToUpper(header[0:7]) == "BEARER " {
		return header[7:]
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// StartSession issues a token for a new session and sets the session cookie
func StartSession(c echo.Context, id identity.Identity) (string, error) {
	sessionID := uuid.New().String()
	token, err := jwtutil.GenerateToken(string(id), sessionID)
	if err != nil {
		return "", err
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwtutil.Lifetime().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(identityKey, id)
	c.Set(sessionIDKey, sessionID)
	return token, nil
}

// EndSession expires the session cookie
func EndSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetIdentity returns the active identity of the request
func GetIdentity(c echo.Context) (identity.Identity, bool) {
	id, ok := c.Get(identityKey).(identity.Identity)
	return id, ok
}

// GetSessionID returns the session the request belongs to, "" when there is none
func GetSessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}
