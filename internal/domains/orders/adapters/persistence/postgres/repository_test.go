package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/platform/migrations"
)

func setupSQLite(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	base := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	tick := 0
	repo := NewRepository(db)
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return repo
}

func sampleOrder(customerID uuid.UUID) domain.Order {
	first := domain.NewLine(uuid.New())
	first.UnitPrice = decimal.RequireFromString("12.50")
	first.Quantity = 3
	second := domain.NewLine(uuid.New())
	second.UnitPrice = decimal.RequireFromString("0.99")
	return domain.NewOrder(customerID, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), []domain.Line{first, second})
}

func TestRepository_InsertAndGetByID(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()
	order := sampleOrder(uuid.New())

	saved, err := repo.Insert(ctx, order)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Zero(t, saved.Version)
	assert.True(t, saved.Metadata.Persisted())
	assert.Equal(t, order.CustomerID, saved.CustomerID)
	assert.True(t, order.Date.Equal(saved.Date))
	require.Len(t, saved.Lines, 2)
	for i, line := range saved.Lines {
		assert.NotEqual(t, uuid.Nil, line.ID)
		assert.Equal(t, i, line.Index)
		assert.Equal(t, order.Lines[i].ArticleID, line.ArticleID)
		assert.True(t, order.Lines[i].UnitPrice.Equal(line.UnitPrice))
		assert.Equal(t, order.Lines[i].Quantity, line.Quantity)
	}
	assert.True(t, saved.Total().Equal(decimal.RequireFromString("38.49")))

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, fetched.SameIdentity(saved))
}

func TestRepository_InsertRejectsTakenID(t *testing.T) {
	repo := setupSQLite(t)
	order := sampleOrder(uuid.New())
	order.ID = uuid.New()

	_, err := repo.Insert(context.Background(), order)
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), order)
	assert.ErrorIs(t, err, ports.ErrAlreadyExists)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo := setupSQLite(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_FindByCustomerIDAndList(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()
	customer := uuid.New()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	var ids []uuid.UUID
	for _, c := range []uuid.UUID{customer, uuid.New(), customer} {
		saved, err := repo.Insert(ctx, sampleOrder(c))
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	mine, err := repo.FindByCustomerID(ctx, customer)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, ids[0], mine[0].ID)
	assert.Equal(t, ids[2], mine[1].ID)
	assert.Len(t, mine[0].Lines, 2)

	_, err = repo.FindByCustomerID(ctx, uuid.New())
	assert.ErrorIs(t, err, ports.ErrNoResult)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, order := range list {
		assert.Equal(t, ids[i], order.ID)
	}
}

func TestRepository_NotConfigured(t *testing.T) {
	_, err := NewRepository(nil).List(context.Background())
	assert.Error(t, err)
}
