package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pos-service/internal/identity"
	"pos-service/pkg/config"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func newGuardedServer() *echo.Echo {
	e := echo.New()
	e.Use(RequestIDMiddleware, Session)

	ok := func(c echo.Context) error {
		id, _ := GetIdentity(c)
		return c.String(http.StatusOK, string(id)+"|"+GetSessionID(c))
	}
	e.GET("/pos", ok, RequireCashier(RedirectToLogin))
	e.GET("/dashboard", ok, RequireAdmin(RedirectToLogin))
	e.GET("/api/cart", ok, RequireCashier(JSONError))
	e.GET("/api/admin/dashboard", ok, RequireAdmin(JSONError))
	return e
}

func tokenFor(t *testing.T, id identity.Identity) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(string(id), "sess-"+string(id))
	require.NoError(t, err)
	return token
}

func TestGuards(t *testing.T) {
	e := newGuardedServer()

	tests := []struct {
		name       string
		path       string
		identity   identity.Identity
		rawToken   string
		wantStatus int
		wantBody   string
		wantAlert  string
	}{
		{name: "pos without identity", path: "/pos", wantStatus: http.StatusSeeOther, wantAlert: MsgLoginRequired},
		{name: "pos as admin", path: "/pos", identity: identity.Admin, wantStatus: http.StatusSeeOther, wantAlert: MsgCashierOnly},
		{name: "pos as cashier", path: "/pos", identity: "2", wantStatus: http.StatusOK, wantBody: "2|sess-2"},
		{name: "pos with tampered token", path: "/pos", rawToken: "not.a.token", wantStatus: http.StatusSeeOther, wantAlert: MsgLoginRequired},
		{name: "dashboard without identity", path: "/dashboard", wantStatus: http.StatusSeeOther, wantAlert: MsgAdminOnly},
		{name: "dashboard as cashier", path: "/dashboard", identity: "1", wantStatus: http.StatusSeeOther, wantAlert: MsgAdminOnly},
		{name: "dashboard as admin", path: "/dashboard", identity: identity.Admin, wantStatus: http.StatusOK, wantBody: "admin|sess-admin"},
		{name: "api cart without identity", path: "/api/cart", wantStatus: http.StatusUnauthorized},
		{name: "api cart as admin", path: "/api/cart", identity: identity.Admin, wantStatus: http.StatusForbidden},
		{name: "api dashboard as cashier", path: "/api/admin/dashboard", identity: "3", wantStatus: http.StatusForbidden},
		{name: "api dashboard as admin", path: "/api/admin/dashboard", identity: identity.Admin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			switch {
			case tt.rawToken != "":
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.rawToken})
			case tt.identity != "":
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tokenFor(t, tt.identity)})
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantAlert != "" {
				loc, err := rec.Result().Location()
				require.NoError(t, err)
				assert.Equal(t, "/", loc.Path)
				assert.Equal(t, tt.wantAlert, loc.Query().Get("alert"))
			}
			if tt.wantStatus == http.StatusUnauthorized || tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestSessionAcceptsBearerToken(t *testing.T) {
	e := newGuardedServer()

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1|sess-1", rec.Body.String())
}

func TestStartAndEndSession(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)

	token, err := StartSession(c, "3")
	require.NoError(t, err)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "3", claims.Identity)
	assert.Equal(t, claims.SessionID, GetSessionID(c))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/logout", nil), rec)
	EndSession(c)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(logger.RequestIDKey).(string))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(logger.RequestIDKey)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(logger.RequestIDKey, "upstream-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", rec.Header().Get(logger.RequestIDKey))
}
