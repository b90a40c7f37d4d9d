package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	customerclient "github.com/Apurer/orders-api/internal/clients/http/customer"
	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/platform/metrics"
)

var _ ports.CustomerDirectory = (*Directory)(nil)

// Fetcher is the remote call the directory wraps; *customerclient.Client satisfies it.
type Fetcher interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (customerclient.Customer, error)
}

// Directory resolves customers through the customer service. Concurrent
// lookups of the same customer share one remote call.
type Directory struct {
	fetcher Fetcher
	group   singleflight.Group
	metrics *metrics.OrdersMetrics
	timeout time.Duration
}

// DefaultLookupTimeout bounds one shared remote lookup.
const DefaultLookupTimeout = 5 * time.Second

// Option configures the directory.
type Option func(*Directory)

// WithMetrics records lookup outcomes and latency.
func WithMetrics(m *metrics.OrdersMetrics) Option {
	return func(d *Directory) {
		d.metrics = m
	}
}

// WithTimeout bounds the shared remote call. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Directory) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func NewDirectory(fetcher Fetcher, opts ...Option) *Directory {
	d := &Directory{fetcher: fetcher, timeout: DefaultLookupTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// FindByID never fails; remote errors are classified into CustomerUnreachable.
// The shared remote call is detached from any single caller's cancellation and
// bounded by the directory timeout; each caller stops waiting when its own ctx ends.
func (d *Directory) FindByID(ctx context.Context, customerID uuid.UUID) ports.CustomerLookup {
	if d == nil || d.fetcher == nil {
		return ports.CustomerUnreachable{Kind: ports.FailureOther, Err: errors.New("customer directory not configured")}
	}

	shared := context.WithoutCancel(ctx)
	results := d.group.DoChan(customerID.String(), func() (any, error) {
		callCtx, cancel := context.WithTimeout(shared, d.timeout)
		defer cancel()
		started := time.Now()
		customer, err := d.fetcher.GetCustomer(callCtx, customerID)
		d.metrics.RecordCustomerLookup(outcome(err), time.Since(started))
		return customer, err
	})

	select {
	case <-ctx.Done():
		return ports.CustomerUnreachable{Kind: ports.FailureOther, Err: ctx.Err()}
	case res := <-results:
		if res.Err != nil {
			return ports.CustomerUnreachable{Kind: Classify(res.Err), Err: res.Err}
		}
		found := res.Val.(customerclient.Customer)
		return ports.CustomerFound{Customer: domain.Customer{LastName: found.LastName, Email: found.Email}}
	}
}

// Classify maps a client error onto a lookup failure kind.
func Classify(err error) ports.FailureKind {
	switch {
	case errors.Is(err, customerclient.ErrNotFound):
		return ports.FailureNotFound
	case errors.Is(err, customerclient.ErrUnauthorized):
		return ports.FailureUnauthorized
	default:
		return ports.FailureOther
	}
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeFound
	}
	switch Classify(err) {
	case ports.FailureNotFound:
		return metrics.OutcomeNotFound
	case ports.FailureUnauthorized:
		return metrics.OutcomeUnauthorized
	default:
		return metrics.OutcomeOther
	}
}
