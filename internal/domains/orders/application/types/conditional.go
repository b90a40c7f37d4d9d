package types

import "github.com/Apurer/orders-api/internal/domains/orders/domain"

// ConditionalRead is the outcome of comparing a caller's version token with
// a freshly loaded order: ReadInvalidToken, ReadUnchanged or ReadChanged.
type ConditionalRead interface {
	isConditionalRead()
}

// ReadInvalidToken means the supplied token is not a quoted string.
type ReadInvalidToken struct {
	Token string
}

// ReadUnchanged means the caller already holds the current version.
type ReadUnchanged struct {
	Token string
}

// ReadChanged carries the order and the token the caller should remember.
type ReadChanged struct {
	Order domain.Order
	Token string
}

func (ReadInvalidToken) isConditionalRead() {}
func (ReadUnchanged) isConditionalRead()    {}
func (ReadChanged) isConditionalRead()      {}
