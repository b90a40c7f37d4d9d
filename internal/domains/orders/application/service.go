package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	ordertypes "github.com/Apurer/orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
)

// Default time budgets for store access.
const (
	DefaultShortTimeout = 500 * time.Millisecond
	DefaultLongTimeout  = 2 * time.Second
	// DefaultPublishTimeout bounds the best-effort event publish after an insert.
	DefaultPublishTimeout = time.Second
)

// Service orchestrates validation, persistence and customer enrichment for orders.
type Service struct {
	repo         ports.Repository
	customers    ports.CustomerDirectory
	validator    *domain.Validator
	publisher    ports.EventPublisher
	logger       *slog.Logger
	shortTimeout time.Duration
	longTimeout  time.Duration

	publishTimeout time.Duration
}

// Option configures optional collaborators.
type Option func(*Service)

// WithValidator replaces the default wall-clock validator.
func WithValidator(v *domain.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithEventPublisher announces created orders through p.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets the logger used for degraded enrichment and publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeouts sets the short (single order) and long (lists, inserts) store budgets.
// Non-positive values keep the defaults.
func WithTimeouts(short, long time.Duration) Option {
	return func(s *Service) {
		if short > 0 {
			s.shortTimeout = short
		}
		if long > 0 {
			s.longTimeout = long
		}
	}
}

// WithPublishTimeout bounds the OrderCreated publish. Non-positive values keep the default.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.publishTimeout = timeout
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, customers ports.CustomerDirectory, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		customers:    customers,
		validator:    domain.NewValidator(),
		logger:       slog.Default(),
		shortTimeout: DefaultShortTimeout,
		longTimeout:  DefaultLongTimeout,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// FindAll returns every stored order with its customer name attached.
func (s *Service) FindAll(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := withBudget(ctx, "list orders", s.longTimeout, func(ctx context.Context) error {
		var err error
		orders, err = s.repo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	names := map[uuid.UUID]string{}
	enriched := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		name, ok := names[order.CustomerID]
		if !ok {
			name = s.customerName(ctx, order.CustomerID)
			names[order.CustomerID] = name
		}
		enriched = append(enriched, order.WithCustomerName(name))
	}
	return enriched, nil
}

// FindByID loads one order under the short budget and enriches it.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (ordertypes.FindResult, error) {
	var order domain.Order
	err := withBudget(ctx, "find order", s.shortTimeout, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetByID(ctx, id)
		return err
	})
	if errors.Is(err, ErrTimeout) {
		return nil, err
	}
	if errors.Is(err, ports.ErrNotFound) {
		return ordertypes.FindNotFound{ID: id}, nil
	}
	if err != nil {
		return nil, err
	}
	return ordertypes.FindSuccess{Order: order.WithCustomerName(s.customerName(ctx, order.CustomerID))}, nil
}

// FindByCustomerID resolves the customer's name once, then loads all of the
// customer's orders under the long budget.
func (s *Service) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (ordertypes.CustomerOrdersResult, error) {
	name := s.customerName(ctx, customerID)

	var orders []domain.Order
	err := withBudget(ctx, "find orders by customer", s.longTimeout, func(ctx context.Context) error {
		var err error
		orders, err = s.repo.FindByCustomerID(ctx, customerID)
		return err
	})
	if errors.Is(err, ErrTimeout) {
		return nil, err
	}
	if errors.Is(err, ports.ErrNoResult) {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "no orders for customer", slog.String("customer.id", customerID.String()))
		return ordertypes.CustomerOrdersAbsent{CustomerID: customerID}, nil
	}
	if err != nil {
		return nil, err
	}

	enriched := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		enriched = append(enriched, order.WithCustomerName(name))
	}
	return ordertypes.CustomerOrdersFound{CustomerID: customerID, Orders: enriched}, nil
}

// Create validates the order and persists it only when every rule holds.
func (s *Service) Create(ctx context.Context, order domain.Order) (ordertypes.CreateResult, error) {
	if violations := s.validator.Validate(order); !violations.Empty() {
		return ordertypes.ConstraintViolations{Violations: violations}, nil
	}

	var saved domain.Order
	err := withBudget(ctx, "insert order", s.longTimeout, func(ctx context.Context) error {
		var err error
		saved, err = s.repo.Insert(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishCreated(ctx, saved)
	return ordertypes.CreateSuccess{Order: saved}, nil
}

// customerName applies the enrichment policy. A missing customer and a failed
// lookup yield different placeholders so callers can tell them apart.
func (s *Service) customerName(ctx context.Context, customerID uuid.UUID) string {
	if s.customers == nil {
		return domain.CustomerNameUnavailable
	}
	switch result := s.customers.FindByID(ctx, customerID).(type) {
	case ports.CustomerFound:
		return result.Customer.LastName
	case ports.CustomerUnreachable:
		if result.Kind == ports.FailureNotFound {
			return domain.CustomerNameNotFound
		}
		attrs := []slog.Attr{
			slog.String("customer.id", customerID.String()),
			slog.String("failure", result.Kind.String()),
		}
		if result.Err != nil {
			attrs = append(attrs, slog.String("error", result.Err.Error()))
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "customer lookup degraded", attrs...)
		return domain.CustomerNameUnavailable
	default:
		return domain.CustomerNameUnavailable
	}
}

func (s *Service) publishCreated(ctx context.Context, order domain.Order) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order created event",
			slog.String("order.id", order.ID.String()),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
