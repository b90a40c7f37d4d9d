package application

import (
	ordertypes "github.com/Apurer/orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/orders-api/internal/domains/orders/domain"
)

// EvaluateConditionalRead compares the caller's previous version token, if
// any, with the order's current version. It performs no I/O.
func EvaluateConditionalRead(order domain.Order, previous *string) ordertypes.ConditionalRead {
	current := order.VersionToken()
	if previous == nil {
		return ordertypes.ReadChanged{Order: order, Token: current}
	}
	if !domain.IsQuotedToken(*previous) {
		return ordertypes.ReadInvalidToken{Token: *previous}
	}
	if *previous == current {
		return ordertypes.ReadUnchanged{Token: current}
	}
	return ordertypes.ReadChanged{Order: order, Token: current}
}
