package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pos-service/internal/cart"
	"pos-service/internal/handler"
	mid "pos-service/internal/middleware"
	"pos-service/internal/repository"
	"pos-service/internal/service"
	"pos-service/pkg/config"
	"pos-service/pkg/database"
	"pos-service/pkg/events"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"
	"pos-service/prometheus"
	"pos-service/web"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+config.ServiceName, appConfig.LogConfig()...)

	jwtutil.Initialize(&appConfig.JWT)
	prometheus.InitMetrics(appConfig)

	db, err := database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	log.Info("Database connection established")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Carts live in Redis when configured, otherwise in process memory
	var carts cart.Store = cart.NewMemoryStore(appConfig.Redis.CartTTL)
	if appConfig.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", appConfig.Redis.Addr), zap.Error(err))
		}
		carts = cart.NewRedisStore(rdb, appConfig.Redis.CartTTL)
		log.Info("Cart store: redis", zap.String("addr", appConfig.Redis.Addr))
	} else {
		log.Warn("REDIS_ADDR not set, carts are kept in memory")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(appConfig.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(appConfig.Kafka.Brokers, appConfig.Kafka.Topic, func(err error) {
			prometheus.RecordEventPublishError()
			log.Warn("Failed to deliver sales event", zap.Error(err))
		})
		log.Info("Sales events enabled", zap.Strings("brokers", appConfig.Kafka.Brokers), zap.String("topic", appConfig.Kafka.Topic))
	}
	defer publisher.Close()

	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	checkout := service.NewCheckoutService(products, orders, carts, publisher, appConfig.Checkout.Atomic)
	dashboard := service.NewDashboardService(orders, publisher)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(mid.Session)

	handler.RegisterRoutes(e, handler.Handlers{
		Health:    handler.NewHealthHandler(sqlDB),
		Login:     handler.NewLoginHandler(checkout, appConfig.Admin.PasswordHash),
		POS:       handler.NewPOSHandler(checkout),
		Dashboard: handler.NewDashboardHandler(dashboard),
	})

	go func() {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
}
