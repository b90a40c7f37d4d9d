package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/platform/metrics"
)

var _ ports.CustomerDirectory = (*Directory)(nil)

// DefaultTTL bounds how long a resolved customer is served from cache.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "orders:customer:"

// Store is the subset of the redis client the cache needs; *goredis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// Directory is a read-through cache in front of another customer directory.
// Only found customers are cached; failures always go back to the source.
type Directory struct {
	next    ports.CustomerDirectory
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.OrdersMetrics
}

// Option configures the cache.
type Option func(*Directory)

func WithTTL(ttl time.Duration) Option {
	return func(d *Directory) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *metrics.OrdersMetrics) Option {
	return func(d *Directory) {
		d.metrics = m
	}
}

// NewDirectory wraps next with a redis-backed cache.
func NewDirectory(next ports.CustomerDirectory, store Store, opts ...Option) *Directory {
	d := &Directory{next: next, store: store, ttl: DefaultTTL, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

type cachedCustomer struct {
	LastName string `json:"lastName"`
	Email    string `json:"email"`
}

func (d *Directory) FindByID(ctx context.Context, customerID uuid.UUID) ports.CustomerLookup {
	key := keyPrefix + customerID.String()

	if customer, ok := d.lookup(ctx, key); ok {
		return ports.CustomerFound{Customer: customer}
	}

	result := d.next.FindByID(ctx, customerID)
	if found, ok := result.(ports.CustomerFound); ok {
		d.remember(ctx, key, found.Customer)
	}
	return result
}

func (d *Directory) lookup(ctx context.Context, key string) (domain.Customer, bool) {
	raw, err := d.store.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		d.metrics.RecordCacheAccess(metrics.CacheMiss)
		return domain.Customer{}, false
	}
	if err != nil {
		d.metrics.RecordCacheAccess(metrics.CacheError)
		d.logger.LogAttrs(ctx, slog.LevelWarn, "customer cache read failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return domain.Customer{}, false
	}
	var cached cachedCustomer
	if err := json.Unmarshal(raw, &cached); err != nil {
		d.metrics.RecordCacheAccess(metrics.CacheError)
		d.logger.LogAttrs(ctx, slog.LevelWarn, "customer cache entry unreadable",
			slog.String("key", key), slog.String("error", err.Error()))
		return domain.Customer{}, false
	}
	d.metrics.RecordCacheAccess(metrics.CacheHit)
	return domain.Customer{LastName: cached.LastName, Email: cached.Email}, true
}

func (d *Directory) remember(ctx context.Context, key string, customer domain.Customer) {
	payload, err := json.Marshal(cachedCustomer{LastName: customer.LastName, Email: customer.Email})
	if err != nil {
		return
	}
	if err := d.store.Set(ctx, key, payload, d.ttl).Err(); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "customer cache write failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}
