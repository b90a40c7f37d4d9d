package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. Listing keeps insertion order.
type Repository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]domain.Order
	order  []uuid.UUID
	now    func() time.Time
}

// Option configures the repository.
type Option func(*Repository)

// WithClock overrides the clock used for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{orders: map[uuid.UUID]domain.Order{}, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert stores a new order. Missing identifiers are generated; a taken ID is rejected.
func (r *Repository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	clone := order.Clone()
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	clone.Version = 0
	clone.Date = domain.DateOf(clone.Date)
	clone.Metadata = projection.NewMetadata(r.now().UTC())
	clone.CustomerName = domain.CustomerNameNotFound
	for i := range clone.Lines {
		if clone.Lines[i].ID == uuid.Nil {
			clone.Lines[i].ID = uuid.New()
		}
		clone.Lines[i].Index = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[clone.ID]; ok {
		return domain.Order{}, ports.ErrAlreadyExists
	}
	r.orders[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return clone.Clone(), nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, ports.ErrNotFound
	}
	return order.Clone(), nil
}

// FindByCustomerID returns ports.ErrNoResult when the customer has no orders.
func (r *Repository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []domain.Order
	for _, id := range r.order {
		if order := r.orders[id]; order.CustomerID == customerID {
			list = append(list, order.Clone())
		}
	}
	if len(list) == 0 {
		return nil, ports.ErrNoResult
	}
	return list, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]domain.Order, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.orders[id].Clone())
	}
	return list, nil
}
