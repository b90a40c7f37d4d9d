package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
)

// FailureKind classifies why a customer could not be resolved.
type FailureKind int

const (
	// FailureOther covers transport errors, timeouts and unexpected statuses.
	FailureOther FailureKind = iota
	// FailureNotFound means the customer service answered that the customer does not exist.
	FailureNotFound
	// FailureUnauthorized means the customer service rejected our credentials.
	FailureUnauthorized
)

func (k FailureKind) String() string {
	switch k {
	case FailureNotFound:
		return "not_found"
	case FailureUnauthorized:
		return "unauthorized"
	default:
		return "other"
	}
}

// CustomerLookup is the outcome of a directory call: CustomerFound or CustomerUnreachable.
type CustomerLookup interface {
	isCustomerLookup()
}

// CustomerFound carries the resolved customer.
type CustomerFound struct {
	Customer domain.Customer
}

// CustomerUnreachable carries the failure classification and the underlying cause.
type CustomerUnreachable struct {
	Kind FailureKind
	Err  error
}

func (CustomerFound) isCustomerLookup()       {}
func (CustomerUnreachable) isCustomerLookup() {}

// CustomerDirectory resolves customers from the remote customer service.
// Implementations never panic or return nil; failures come back as CustomerUnreachable.
type CustomerDirectory interface {
	FindByID(ctx context.Context, customerID uuid.UUID) CustomerLookup
}
