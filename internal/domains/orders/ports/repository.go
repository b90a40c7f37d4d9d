package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
)

var (
	// ErrNotFound is returned when no order carries the requested ID.
	ErrNotFound = errors.New("order not found")
	// ErrNoResult is returned when a customer query matches no orders.
	ErrNoResult = errors.New("no orders for customer")
	// ErrAlreadyExists is returned when inserting an order whose ID is taken.
	ErrAlreadyExists = errors.New("order already exists")
)

// Repository persists orders. Insert assigns ID (when unset), version 0,
// line IDs and timestamps; the customer name is never stored.
type Repository interface {
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}
