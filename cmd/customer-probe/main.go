package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/Apurer/orders-api/internal/app/api"
	customerclient "github.com/Apurer/orders-api/internal/clients/http/customer"
	customerdirectory "github.com/Apurer/orders-api/internal/domains/orders/adapters/external/customer"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/orders-api/internal/platform/observability"
)

func main() {
	id := flag.String("customer", "00000000-0000-0000-0000-000000000001", "customer id to look up")
	flag.Parse()

	logger := platformobservability.NewLogger(os.Getenv("LOG_LEVEL")).With(slog.String("service", "customer-probe"))
	customerID, err := uuid.Parse(*id)
	if err != nil {
		log.Fatalf("invalid customer id %q: %v", *id, err)
	}
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	client, err := customerclient.NewClient(
		cfg.CustomerServiceURL,
		customerclient.WithHTTPClient(&http.Client{Timeout: cfg.CustomerServiceTimeout}),
		customerclient.WithBasicAuth(cfg.CustomerServiceUser, cfg.CustomerServicePassword),
	)
	if err != nil {
		log.Fatalf("customer service client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CustomerServiceTimeout)
	defer cancel()
	attrs := []any{slog.String("customer_id", customerID.String()), slog.String("url", cfg.CustomerServiceURL)}
	switch result := customerdirectory.NewDirectory(client).FindByID(ctx, customerID).(type) {
	case ports.CustomerFound:
		logger.Info("customer found", append(attrs, slog.String("last_name", result.Customer.LastName))...)
	case ports.CustomerUnreachable:
		if result.Err != nil {
			attrs = append(attrs, slog.String("error", result.Err.Error()))
		}
		logger.Warn("customer not resolved", append(attrs, slog.String("kind", result.Kind.String()))...)
		cancel()
		os.Exit(1)
	}
}
