package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	customerclient "github.com/Apurer/orders-api/internal/clients/http/customer"
	customercache "github.com/Apurer/orders-api/internal/domains/orders/adapters/cache/redis"
	customerdirectory "github.com/Apurer/orders-api/internal/domains/orders/adapters/external/customer"
	ordermemory "github.com/Apurer/orders-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/orders-api/internal/domains/orders/adapters/messaging/kafka"
	orderobs "github.com/Apurer/orders-api/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/orders-api/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/Apurer/orders-api/internal/domains/orders/application"
	orderports "github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/platform/auth"
	"github.com/Apurer/orders-api/internal/platform/metrics"
	"github.com/Apurer/orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/orders-api/internal/platform/postgres"
)

const serviceName = "orders-api"

// Run boots the orders HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, instruments, shutdown, err := bootstrap(ctx, ".env")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	promMetrics := metrics.NewOrdersMetrics()

	repo, cleanupRepo := buildOrderRepository(ctx, cfg, logger)
	defer cleanupRepo()

	customers, cleanupCustomers, err := buildCustomerDirectory(cfg, logger, promMetrics)
	if err != nil {
		return err
	}
	defer cleanupCustomers()

	serviceOpts := []orderapp.Option{
		orderapp.WithLogger(logger),
		orderapp.WithTimeouts(cfg.ShortTimeout, cfg.LongTimeout),
	}
	if publisher, err := buildEventPublisher(cfg, logger, promMetrics); err != nil {
		logger.Warn("order events disabled", slog.String("error", err.Error()))
	} else if publisher != nil {
		defer publisher.Close()
		serviceOpts = append(serviceOpts, orderapp.WithEventPublisher(publisher))
	}

	orderService := orderobs.New(
		orderapp.NewService(repo, customers, serviceOpts...),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
		orderobs.WithPrometheus(promMetrics),
	)

	authCfg, err := buildAuthConfig(cfg)
	if err != nil {
		return err
	}
	if authCfg.Disabled {
		logger.Warn("basic authentication disabled")
	}

	router := NewRouter(RouterConfig{
		ServiceName:    serviceName,
		Orders:         NewOrdersAPI(orderService),
		Auth:           authCfg,
		Metrics:        metrics.Handler(),
		AllowedOrigins: cfg.AllowedOrigins,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("orders API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("orders API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down orders API")
	return server.Shutdown(shutdownCtx)
}

// bootstrap loads configuration, .env included, before observability reads
// LOG_LEVEL and the OTEL_* variables.
func bootstrap(ctx context.Context, envFiles ...string) (Config, *platformobservability.Instruments, func(context.Context) error, error) {
	cfg, err := loadConfig(envFiles...)
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return cfg, instruments, shutdown, nil
}

func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (orderports.Repository, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory order repository")
		return ordermemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, logger, platformpostgres.DefaultPool)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return ordermemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return ordermemory.NewRepository(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		_ = sqlDB.Close()
		logger.Warn("failed to migrate orders schema, falling back to memory", slog.String("error", err.Error()))
		return ordermemory.NewRepository(), func() {}
	}
	logger.Info("order repository configured with postgres")
	return orderpostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

func buildCustomerDirectory(cfg Config, logger *slog.Logger, m *metrics.OrdersMetrics) (orderports.CustomerDirectory, func(), error) {
	client, err := customerclient.NewClient(
		cfg.CustomerServiceURL,
		customerclient.WithHTTPClient(&http.Client{Timeout: cfg.CustomerServiceTimeout}),
		customerclient.WithBasicAuth(cfg.CustomerServiceUser, cfg.CustomerServicePassword),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("customer service client: %w", err)
	}
	var directory orderports.CustomerDirectory = customerdirectory.NewDirectory(
		client,
		customerdirectory.WithMetrics(m),
		customerdirectory.WithTimeout(cfg.CustomerServiceTimeout),
	)
	logger.Info("customer directory configured", slog.String("url", cfg.CustomerServiceURL))

	if cfg.RedisAddr == "" {
		return directory, func() {}, nil
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	directory = customercache.NewDirectory(
		directory,
		rdb,
		customercache.WithTTL(cfg.CustomerCacheTTL),
		customercache.WithLogger(logger),
		customercache.WithMetrics(m),
	)
	logger.Info("customer cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.CustomerCacheTTL))
	return directory, func() { _ = rdb.Close() }, nil
}

func buildEventPublisher(cfg Config, logger *slog.Logger, m *metrics.OrdersMetrics) (*kafka.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, order events are not published")
		return nil, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	logger.Info("order events enabled", slog.String("topic", cfg.KafkaOrderTopic))
	return kafka.NewPublisher(
		producer,
		kafka.WithTopic(cfg.KafkaOrderTopic),
		kafka.WithLogger(logger),
		kafka.WithMetrics(m),
	), nil
}

func buildAuthConfig(cfg Config) (auth.Config, error) {
	if cfg.AuthDisabled {
		return auth.Config{Disabled: true}, nil
	}
	admin, err := auth.NewUser(cfg.AdminUser, cfg.AdminPassword, auth.AllRoles...)
	if err != nil {
		return auth.Config{}, fmt.Errorf("admin user: %w", err)
	}
	return auth.Config{Users: []auth.User{admin}}, nil
}
