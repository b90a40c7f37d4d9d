package api

import (
	"errors"

	orderapp "github.com/Apurer/orders-api/internal/domains/orders/application"
	orderports "github.com/Apurer/orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/orders-api/internal/shared/errors"
)

// mapOrderError translates application errors into problem responses.
func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderapp.ErrTimeout):
		return apierrors.ErrTimeout.WithDetail("the order store did not answer in time"), true
	case errors.Is(err, orderports.ErrAlreadyExists):
		return apierrors.ErrConflict.WithDetail("an order with this id already exists"), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

func newOrderResponder() *apierrors.Responder {
	return apierrors.NewResponder("", mapOrderError)
}
