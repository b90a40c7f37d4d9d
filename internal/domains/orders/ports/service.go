package ports

import (
	"context"

	"github.com/google/uuid"

	ordertypes "github.com/Apurer/orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/orders-api/internal/domains/orders/domain"
)

// Service defines the order use cases exposed to adapters (inbound/driving port).
type Service interface {
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (ordertypes.FindResult, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) (ordertypes.CustomerOrdersResult, error)
	Create(ctx context.Context, order domain.Order) (ordertypes.CreateResult, error)
}
