// Package devdata holds the sample orders loaded into development databases.
package devdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
)

var (
	customer1  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	customer2  = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	customer4  = uuid.MustParse("00000000-0000-0000-0000-000000000004")
	customer10 = uuid.MustParse("00000000-0000-0000-0000-000000000010")
)

func article(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("20000000-0000-0000-0000-%012d", n))
}

func line(articleNo int, price int64, quantity int32) domain.Line {
	l := domain.NewLine(article(articleNo))
	l.UnitPrice = decimal.NewFromInt(price)
	l.Quantity = quantity
	return l
}

func order(id string, day int, customer uuid.UUID, lines ...domain.Line) domain.Order {
	o := domain.NewOrder(customer, time.Date(2021, time.January, day, 0, 0, 0, 0, time.UTC), lines)
	o.ID = uuid.MustParse(id)
	return o
}

// Orders returns a fresh copy of the six sample orders.
func Orders() []domain.Order {
	return []domain.Order{
		order("10000000-0000-0000-0000-000000000001", 1, customer1, line(1, 10, 1), line(2, 20, 1)),
		order("10000000-0000-0000-0000-000000000002", 2, customer1, line(3, 30, 3), line(4, 40, 4)),
		order("10000000-0000-0000-0000-000000000003", 3, customer1, line(5, 50, 5), line(6, 60, 6)),
		order("10000000-0000-0000-0000-000000000004", 4, customer2, line(1, 10, 1)),
		order("10000000-0000-0000-0000-000000000005", 5, customer4, line(1, 10, 1)),
		order("10000000-0000-0000-0000-000000000010", 6, customer10, line(1, 10, 1)),
	}
}

// Seed inserts the sample orders. Orders already present are skipped, so
// seeding twice is harmless. It reports how many orders were inserted.
func Seed(ctx context.Context, repo ports.Repository) (int, error) {
	inserted := 0
	for _, o := range Orders() {
		if _, err := repo.Insert(ctx, o); err != nil {
			if errors.Is(err, ports.ErrAlreadyExists) {
				continue
			}
			return inserted, fmt.Errorf("seed order %s: %w", o.ID, err)
		}
		inserted++
	}
	return inserted, nil
}
