package types

import (
	"github.com/google/uuid"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
)

// FindResult is the outcome of a lookup by ID: FindSuccess or FindNotFound.
type FindResult interface {
	isFindResult()
}

// FindSuccess carries the enriched order.
type FindSuccess struct {
	Order domain.Order
}

// FindNotFound reports that no order has the requested ID.
type FindNotFound struct {
	ID uuid.UUID
}

func (FindSuccess) isFindResult()  {}
func (FindNotFound) isFindResult() {}

// CreateResult is the outcome of a create: CreateSuccess or ConstraintViolations.
type CreateResult interface {
	isCreateResult()
}

// CreateSuccess carries the persisted order with its store-assigned fields.
type CreateSuccess struct {
	Order domain.Order
}

// ConstraintViolations lists every rule the submitted order broke. Nothing was written.
type ConstraintViolations struct {
	Violations domain.Violations
}

func (CreateSuccess) isCreateResult()        {}
func (ConstraintViolations) isCreateResult() {}

// CustomerOrdersResult is the outcome of a customer query: CustomerOrdersFound or CustomerOrdersAbsent.
type CustomerOrdersResult interface {
	isCustomerOrdersResult()
}

// CustomerOrdersFound carries the customer's orders, each enriched with the same name.
type CustomerOrdersFound struct {
	CustomerID uuid.UUID
	Orders     []domain.Order
}

// CustomerOrdersAbsent reports that the store holds no orders for the customer.
type CustomerOrdersAbsent struct {
	CustomerID uuid.UUID
}

func (CustomerOrdersFound) isCustomerOrdersResult()  {}
func (CustomerOrdersAbsent) isCustomerOrdersResult() {}
