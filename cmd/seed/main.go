package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/Apurer/orders-api/internal/domains/orders/adapters/devdata"
	orderpostgres "github.com/Apurer/orders-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/Apurer/orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/orders-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("order seed failed: %v", err)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := platformobservability.NewLogger("info").With(slog.String("service", "orders-seed"))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		return errors.New("POSTGRES_DSN not set or connection failed; cannot seed orders")
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to migrate orders schema: %w", err)
	}
	inserted, err := devdata.Seed(ctx, orderpostgres.NewRepository(db))
	if err != nil {
		return fmt.Errorf("failed to seed orders: %w", err)
	}
	logger.Info("order seed completed", slog.Int("inserted", inserted), slog.Int("total", len(devdata.Orders())))
	return nil
}
