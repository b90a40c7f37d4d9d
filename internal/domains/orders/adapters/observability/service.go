package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordertypes "github.com/Apurer/orders-api/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/platform/metrics"
)

const tracerName = "github.com/Apurer/orders-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner      orderports.Service
	tracer     trace.Tracer
	logger     *slog.Logger
	metrics    serviceMetrics
	prometheus *metrics.OrdersMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// WithPrometheus mirrors create outcomes into the Prometheus collectors.
func WithPrometheus(m *metrics.OrdersMetrics) Option {
	return func(s *Service) {
		s.prometheus = m
	}
}

// New wraps the core orders service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.Default(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) FindAll(ctx context.Context) ([]orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FindAll")
	defer span.End()

	result, err := s.inner.FindAll(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	s.logInfo(ctx, "orders listed", slog.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (ordertypes.FindResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FindByID", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	result, err := s.inner.FindByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id.String()))
	}
	_, found := result.(ordertypes.FindSuccess)
	span.SetAttributes(attribute.Bool("order.found", found))
	s.logInfo(ctx, "order looked up", slog.String("order.id", id.String()), slog.Bool("found", found))
	return result, nil
}

func (s *Service) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (ordertypes.CustomerOrdersResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FindByCustomerID",
		trace.WithAttributes(attribute.String("customer.id", customerID.String())))
	defer span.End()

	result, err := s.inner.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load customer orders", slog.String("customer.id", customerID.String()))
	}
	count := 0
	if found, ok := result.(ordertypes.CustomerOrdersFound); ok {
		count = len(found.Orders)
	}
	span.SetAttributes(attribute.Int("orders.count", count))
	s.logInfo(ctx, "customer orders listed", slog.String("customer.id", customerID.String()), slog.Int("orders.count", count))
	return result, nil
}

func (s *Service) Create(ctx context.Context, order orderdomain.Order) (ordertypes.CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Create",
		trace.WithAttributes(
			attribute.String("customer.id", order.CustomerID.String()),
			attribute.Int("order.lines", len(order.Lines))))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("customer.id", order.CustomerID.String()), slog.Int("order.lines", len(order.Lines)))
	result, err := s.inner.Create(ctx, order)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("customer.id", order.CustomerID.String()))
	}
	switch r := result.(type) {
	case ordertypes.CreateSuccess:
		s.metrics.recordCreated(ctx, "created")
		s.prometheus.RecordOrderCreated()
		span.SetAttributes(attribute.String("order.id", r.Order.ID.String()))
		s.logInfo(ctx, "order created", slog.String("order.id", r.Order.ID.String()))
	case ordertypes.ConstraintViolations:
		keys := r.Violations.Keys()
		s.metrics.recordCreated(ctx, "rejected")
		s.prometheus.RecordViolations(keys)
		span.SetAttributes(attribute.StringSlice("order.violations", keys))
		s.logInfo(ctx, "order rejected", slog.Any("violations", keys))
	}
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.create_outcomes", metric.WithDescription("Order submissions by outcome"))
	return serviceMetrics{ordersCreated: ordersCreated}
}

func (m serviceMetrics) recordCreated(ctx context.Context, outcome string) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

var _ orderports.Service = (*Service)(nil)
