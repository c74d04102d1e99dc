package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pos-service/internal/cart"
	"pos-service/internal/identity"
	mid "pos-service/internal/middleware"
	"pos-service/internal/model"
	"pos-service/internal/repository/repotest"
	"pos-service/internal/sales"
	"pos-service/internal/service"
	"pos-service/pkg/config"
	"pos-service/pkg/events"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"
	"pos-service/web"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	agua = model.Product{ID: 1, Name: "Agua Mineral", Price: decimal.RequireFromString("2.50"), Category: "Bebidas"}
	coca = model.Product{ID: 2, Name: "Coca Cola", Price: decimal.RequireFromString("3.00"), Category: "Bebidas"}
	pan  = model.Product{ID: 3, Name: "Pan Lactal", Price: decimal.RequireFromString("1.25"), Category: "Panadería"}
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testEnv struct {
	e        *echo.Echo
	products *repotest.Products
	orders   *repotest.Orders
	pinger   *fakePinger
}

func newTestEnv(t *testing.T, adminPasswordHash string) *testEnv {
	t.Helper()
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "handler-test-key", ExpirationHours: 1})

	env := &testEnv{
		products: repotest.NewProducts(agua, coca, pan),
		orders:   repotest.NewOrders(),
		pinger:   &fakePinger{},
	}

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.Use(mid.RequestIDMiddleware, logger.Middleware(zap.NewNop()), mid.Session)

	checkout := service.NewCheckoutService(env.products, env.orders, cart.NewMemoryStore(time.Hour), events.NoopPublisher{}, true)
	dashboard := service.NewDashboardService(env.orders, events.NoopPublisher{})
	RegisterRoutes(e, Handlers{
		Health:    NewHealthHandler(env.pinger),
		Login:     NewLoginHandler(checkout, adminPasswordHash),
		POS:       NewPOSHandler(checkout),
		Dashboard: NewDashboardHandler(dashboard),
	})

	env.e = e
	return env
}

type request struct {
	method   string
	target   string
	identity identity.Identity
	bearer   string
	form     url.Values
	json     string
}

func (env *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if r.form != nil {
		body = strings.NewReader(r.form.Encode())
	} else if r.json != "" {
		body = strings.NewReader(r.json)
	}

	req := httptest.NewRequest(r.method, r.target, body)
	switch {
	case r.form != nil:
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	case r.json != "":
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.identity != "" {
		token, err := jwtutil.GenerateToken(string(r.identity), "session-"+string(r.identity))
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: mid.SessionCookie, Value: token})
	}
	if r.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.bearer)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func location(t *testing.T, rec *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	loc, err := rec.Result().Location()
	require.NoError(t, err)
	return loc
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrEmptyCart, http.StatusBadRequest},
		{service.ErrStoreUndefined, http.StatusBadRequest},
		{service.ErrConfirmationRequired, http.StatusBadRequest},
		{sales.ErrInvalidStoreFilter, http.StatusBadRequest},
		{identity.ErrUnknownIdentity, http.StatusBadRequest},
		{service.ErrCheckoutInProgress, http.StatusConflict},
		{service.ErrProductNotFound, http.StatusNotFound},
		{service.ErrOrderNotFound, http.StatusNotFound},
		{&service.OrderInsertError{Err: errors.New("boom")}, http.StatusInternalServerError},
		{&service.ItemsInsertError{OrderID: 4, Err: errors.New("boom")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, request{method: http.MethodGet, target: "/health?check=db"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"db_status":"ok"`)

	env.pinger.err = errors.New("connection refused")
	rec = env.do(t, request{method: http.MethodGet, target: "/health?check=db"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
