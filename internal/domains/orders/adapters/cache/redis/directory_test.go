package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
)

type memoryStore struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	readErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Get(_ context.Context, key string) *goredis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return goredis.NewStringResult("", s.readErr)
	}
	v, ok := s.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (s *memoryStore) Set(_ context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	s.ttls[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

type countingDirectory struct {
	result ports.CustomerLookup
	calls  int
}

func (c *countingDirectory) FindByID(context.Context, uuid.UUID) ports.CustomerLookup {
	c.calls++
	return c.result
}

func TestDirectory_CachesFoundCustomers(t *testing.T) {
	store := newMemoryStore()
	next := &countingDirectory{result: ports.CustomerFound{Customer: domain.Customer{LastName: "Muster", Email: "m@example.com"}}}
	dir := NewDirectory(next, store, WithTTL(time.Minute))
	id := uuid.New()

	first := dir.FindByID(context.Background(), id)
	second := dir.FindByID(context.Background(), id)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, time.Minute, store.ttls[keyPrefix+id.String()])
}

func TestDirectory_DoesNotCacheFailures(t *testing.T) {
	store := newMemoryStore()
	next := &countingDirectory{result: ports.CustomerUnreachable{Kind: ports.FailureNotFound}}
	dir := NewDirectory(next, store)
	id := uuid.New()

	dir.FindByID(context.Background(), id)
	result := dir.FindByID(context.Background(), id)

	assert.Equal(t, 2, next.calls)
	assert.Equal(t, ports.CustomerUnreachable{Kind: ports.FailureNotFound}, result)
	assert.Empty(t, store.values)
}

func TestDirectory_FallsThroughOnStoreError(t *testing.T) {
	store := newMemoryStore()
	store.readErr = errors.New("connection refused")
	next := &countingDirectory{result: ports.CustomerFound{Customer: domain.Customer{LastName: "Meier"}}}

	result := NewDirectory(next, store).FindByID(context.Background(), uuid.New())
	require.Equal(t, 1, next.calls)
	assert.Equal(t, "Meier", result.(ports.CustomerFound).Customer.LastName)
}

func TestDirectory_IgnoresCorruptEntries(t *testing.T) {
	store := newMemoryStore()
	id := uuid.New()
	store.values[keyPrefix+id.String()] = "{not json"
	next := &countingDirectory{result: ports.CustomerFound{Customer: domain.Customer{LastName: "Schulz"}}}

	result := NewDirectory(next, store).FindByID(context.Background(), id)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, "Schulz", result.(ports.CustomerFound).Customer.LastName)
}
