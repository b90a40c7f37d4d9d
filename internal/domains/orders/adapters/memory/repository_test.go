package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
)

var stamp = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newOrder(customerID uuid.UUID) domain.Order {
	line := domain.NewLine(uuid.New())
	line.UnitPrice = decimal.RequireFromString("2.50")
	return domain.NewOrder(customerID, stamp, []domain.Line{line, domain.NewLine(uuid.New())})
}

func TestRepository_InsertAssignsStoreFields(t *testing.T) {
	repo := NewRepository(WithClock(func() time.Time { return stamp }))

	saved, err := repo.Insert(context.Background(), newOrder(uuid.New()))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Zero(t, saved.Version)
	assert.Equal(t, stamp, saved.Metadata.CreatedAt)
	assert.True(t, saved.Metadata.Persisted())
	for i, line := range saved.Lines {
		assert.NotEqual(t, uuid.Nil, line.ID)
		assert.Equal(t, i, line.Index)
	}

	fetched, err := repo.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, fetched)
}

func TestRepository_InsertRejectsTakenID(t *testing.T) {
	repo := NewRepository()
	order := newOrder(uuid.New())
	order.ID = uuid.New()

	_, err := repo.Insert(context.Background(), order)
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), order)
	assert.ErrorIs(t, err, ports.ErrAlreadyExists)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo := NewRepository()
	saved, err := repo.Insert(context.Background(), newOrder(uuid.New()))
	require.NoError(t, err)

	saved.Lines[0].Quantity = 99
	fetched, err := repo.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQuantity, fetched.Lines[0].Quantity)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	_, err := NewRepository().GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_FindByCustomerID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	customer := uuid.New()

	first, err := repo.Insert(ctx, newOrder(customer))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newOrder(uuid.New()))
	require.NoError(t, err)
	second, err := repo.Insert(ctx, newOrder(customer))
	require.NoError(t, err)

	list, err := repo.FindByCustomerID(ctx, customer)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = repo.FindByCustomerID(ctx, uuid.New())
	assert.ErrorIs(t, err, ports.ErrNoResult)
}

func TestRepository_ListKeepsInsertionOrder(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		saved, err := repo.Insert(ctx, newOrder(uuid.New()))
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, order := range list {
		assert.Equal(t, ids[i], order.ID)
	}
}

func TestRepository_HonoursCancelledContext(t *testing.T) {
	repo := NewRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.Insert(ctx, newOrder(uuid.New()))
	assert.ErrorIs(t, err, context.Canceled)
}
