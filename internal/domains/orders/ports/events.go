package ports

import (
	"context"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
)

// EventPublisher announces order lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
}
