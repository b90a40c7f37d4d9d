package application

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout signals that a store step exceeded its time budget. It is fatal
// for the call and is never reported as a missing order.
var ErrTimeout = errors.New("order operation timed out")

// withBudget runs fn under a deadline of budget. Once the deadline has
// passed the outcome is a timeout, whatever fn returned.
func withBudget(ctx context.Context, op string, budget time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	err := fn(ctx)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s exceeded %s: %w", ErrTimeout, op, budget, context.DeadlineExceeded)
	}
	return mapError(op, err)
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
