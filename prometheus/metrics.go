package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"pos-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos"

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	StatusCodeCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_status_category_total",
			Help:      "Total number of responses by status category (2xx, 3xx, 4xx, 5xx)",
		},
		[]string{"category"},
	)
)

// Domain metrics
var (
	// DBOperationDuration records database round trips by operation
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"}, // query, insert, update, transaction
	)

	SalesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Total number of completed sales",
		},
		[]string{"store_id"},
	)

	SalesRevenueCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_revenue_total",
			Help:      "Revenue of completed sales at checkout time",
		},
		[]string{"store_id"},
	)

	CheckoutFailuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_failures_total",
			Help:      "Total number of failed checkouts by stage",
		},
		[]string{"stage"}, // empty_cart, store_undefined, in_progress, order_insert, items_insert, transaction
	)

	CancellationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_cancellations_total",
			Help:      "Total number of sale cancellation attempts by result",
		},
		[]string{"result"},
	)

	CartOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Total number of cart mutations",
		},
		[]string{"operation"},
	)

	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login attempts by role and result",
		},
		[]string{"role", "result"},
	)

	GuardRejectionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_rejections_total",
			Help:      "Total number of requests rejected by identity guards",
		},
		[]string{"guard"},
	)

	EventPublishErrorsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Total number of sales events that could not be published",
		},
	)

	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "info",
			Help:      "Information about the POS service",
		},
		[]string{"environment", "checkout_mode"},
	)
)

var registerOnce sync.Once

// InitMetrics registers all metrics with the default registry
func InitMetrics(cfg *config.Config) {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			StatusCodeCategoryCounter,
			DBOperationDuration,
			SalesCounter,
			SalesRevenueCounter,
			CheckoutFailuresCounter,
			CancellationsCounter,
			CartOperationsCounter,
			LoginCounter,
			GuardRejectionsCounter,
			EventPublishErrorsCounter,
			InfoGauge,
		)
	})

	mode := "two_step"
	if cfg.Checkout.Atomic {
		mode = "atomic"
	}
	InfoGauge.WithLabelValues(cfg.Server.Env, mode).Set(1)
}

// MetricsMiddleware records request count and duration for every route
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			statusStr := strconv.Itoa(status)
			method := c.Request().Method
			path := c.Path()

			HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
			HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())
			if category := statusCategory(status); category != "" {
				StatusCodeCategoryCounter.WithLabelValues(category).Inc()
			}

			return err
		}
	}
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// RecordSale counts a completed sale and its revenue
func RecordSale(storeID uint, total float64) {
	label := strconv.FormatUint(uint64(storeID), 10)
	SalesCounter.WithLabelValues(label).Inc()
	SalesRevenueCounter.WithLabelValues(label).Add(total)
}

// RecordCheckoutFailure counts a failed checkout at the given stage
func RecordCheckoutFailure(stage string) {
	CheckoutFailuresCounter.WithLabelValues(stage).Inc()
}

// RecordCancellation counts a cancellation attempt
func RecordCancellation(result string) {
	CancellationsCounter.WithLabelValues(result).Inc()
}

// RecordCartOperation counts a cart mutation
func RecordCartOperation(operation string) {
	CartOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordLogin counts a login attempt; role is "cashier" or "admin"
func RecordLogin(role, result string) {
	LoginCounter.WithLabelValues(role, result).Inc()
}

// RecordGuardRejection counts a request turned away by an identity guard
func RecordGuardRejection(guard string) {
	GuardRejectionsCounter.WithLabelValues(guard).Inc()
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordEventPublishError counts an event the broker did not accept
func RecordEventPublishError() {
	EventPublishErrorsCounter.Inc()
}
