package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/orders-api/internal/shared/projection"
)

// Customer name placeholders attached when the customer service cannot supply a name.
const (
	// CustomerNameNotFound marks a customer that does not exist in the customer service.
	CustomerNameNotFound = "N/A"
	// CustomerNameUnavailable marks a lookup that failed for infrastructure or auth reasons.
	CustomerNameUnavailable = "Exception"
)

// DefaultQuantity is applied to lines created without an explicit quantity.
const DefaultQuantity int32 = 1

// Line is a single article position of an order.
type Line struct {
	ID        uuid.UUID
	ArticleID uuid.UUID
	UnitPrice decimal.Decimal
	Quantity  int32
	Index     int
}

// NewLine builds a line with the default quantity and a zero price.
func NewLine(articleID uuid.UUID) Line {
	return Line{ArticleID: articleID, UnitPrice: decimal.Zero, Quantity: DefaultQuantity}
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// Order is the aggregate root of the orders context. ID, Version and Metadata
// belong to the store; CustomerName is an enrichment that is never persisted.
type Order struct {
	ID           uuid.UUID
	Version      int64
	Date         time.Time
	CustomerID   uuid.UUID
	Lines        []Line
	Metadata     projection.Metadata
	CustomerName string
}

// NewOrder assembles an unsaved order. Line indexes follow slice positions.
func NewOrder(customerID uuid.UUID, date time.Time, lines []Line) Order {
	order := Order{
		Date:         DateOf(date),
		CustomerID:   customerID,
		Lines:        make([]Line, len(lines)),
		CustomerName: CustomerNameNotFound,
	}
	for i, line := range lines {
		line.Index = i
		order.Lines[i] = line
	}
	return order
}

// SameIdentity reports whether both orders denote the same stored entity.
// Orders without an ID have no identity and never match.
func (o Order) SameIdentity(other Order) bool {
	return o.ID != uuid.Nil && o.ID == other.ID
}

// Clone returns a copy that shares no line storage with o.
func (o Order) Clone() Order {
	clone := o
	if o.Lines != nil {
		clone.Lines = append([]Line(nil), o.Lines...)
	}
	return clone
}

// WithCustomerName returns an enriched copy; o is left untouched.
func (o Order) WithCustomerName(name string) Order {
	clone := o.Clone()
	clone.CustomerName = name
	return clone
}

// Total sums the line subtotals.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// VersionToken renders the concurrency token for the current version.
func (o Order) VersionToken() string {
	return VersionToken(o.Version)
}

// VersionToken renders a version as a double-quoted decimal string, e.g. "0".
func VersionToken(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// IsQuotedToken reports whether token is wrapped in matching double quotes.
func IsQuotedToken(token string) bool {
	return len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"'
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
