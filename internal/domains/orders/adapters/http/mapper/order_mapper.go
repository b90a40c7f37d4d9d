package mapper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderdomain "github.com/Apurer/orders-api/internal/domains/orders/domain"
)

// DateLayout is the wire format of order dates.
const DateLayout = time.DateOnly

// ErrMalformed marks request bodies that cannot be turned into an order.
var ErrMalformed = errors.New("malformed order")

// Link is a HAL hyperlink.
type Link struct {
	Href string `json:"href"`
}

// Links keys hyperlinks by relation.
type Links map[string]Link

// OrderRequest is the body of POST /api.
type OrderRequest struct {
	CustomerID string        `json:"customerId"`
	Date       string        `json:"date,omitempty"`
	Lines      []LineRequest `json:"lines"`
}

// LineRequest is one order line in a create request. Omitted price and quantity take defaults.
type LineRequest struct {
	ArticleID string           `json:"articleId"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	Quantity  *int32           `json:"quantity,omitempty"`
}

// Order is the transport representation of an order.
type Order struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Lines        []Line          `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
	Links        Links           `json:"_links,omitempty"`
}

// Line is the transport representation of an order line.
type Line struct {
	ID        string          `json:"id"`
	ArticleID string          `json:"articleId"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int32           `json:"quantity"`
	Index     int             `json:"index"`
}

// Collection is the HAL envelope of an order list.
type Collection struct {
	Embedded struct {
		Orders []Order `json:"orders"`
	} `json:"_embedded"`
	Links Links `json:"_links"`
}

// ToDomainOrder converts a create request into an unsaved order. A missing date becomes today.
func ToDomainOrder(req OrderRequest, today time.Time) (orderdomain.Order, error) {
	customerID, err := uuid.Parse(strings.TrimSpace(req.CustomerID))
	if err != nil {
		return orderdomain.Order{}, fmt.Errorf("%w: customerId: %v", ErrMalformed, err)
	}
	date := today
	if raw := strings.TrimSpace(req.Date); raw != "" {
		date, err = time.Parse(DateLayout, raw)
		if err != nil {
			return orderdomain.Order{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrMalformed)
		}
	}
	lines := make([]orderdomain.Line, 0, len(req.Lines))
	for i, l := range req.Lines {
		articleID, err := uuid.Parse(strings.TrimSpace(l.ArticleID))
		if err != nil {
			return orderdomain.Order{}, fmt.Errorf("%w: lines[%d].articleId: %v", ErrMalformed, i, err)
		}
		line := orderdomain.NewLine(articleID)
		if l.UnitPrice != nil {
			line.UnitPrice = *l.UnitPrice
		}
		if l.Quantity != nil {
			line.Quantity = *l.Quantity
		}
		lines = append(lines, line)
	}
	return orderdomain.NewOrder(customerID, date, lines), nil
}

// FromDomainOrder renders an order with self, list and add links rooted at baseURI.
func FromDomainOrder(order orderdomain.Order, baseURI string) Order {
	out := Order{
		ID:           order.ID.String(),
		Date:         order.Date.Format(DateLayout),
		CustomerID:   order.CustomerID.String(),
		CustomerName: order.CustomerName,
		Lines:        make([]Line, 0, len(order.Lines)),
		Total:        order.Total(),
		Links: Links{
			"self": {Href: OrderURI(baseURI, order.ID)},
			"list": {Href: CollectionURI(baseURI)},
			"add":  {Href: CollectionURI(baseURI)},
		},
	}
	if order.Metadata.Persisted() {
		created, updated := order.Metadata.CreatedAt, order.Metadata.UpdatedAt
		out.CreatedAt, out.UpdatedAt = &created, &updated
	}
	for _, line := range order.Lines {
		out.Lines = append(out.Lines, Line{
			ID:        line.ID.String(),
			ArticleID: line.ArticleID.String(),
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Index:     line.Index,
		})
	}
	return out
}

// FromDomainOrders wraps orders in a HAL collection; self is the request URI.
func FromDomainOrders(orders []orderdomain.Order, baseURI, selfURI string) Collection {
	var c Collection
	c.Embedded.Orders = make([]Order, 0, len(orders))
	for _, order := range orders {
		c.Embedded.Orders = append(c.Embedded.Orders, FromDomainOrder(order, baseURI))
	}
	c.Links = Links{"self": {Href: selfURI}}
	return c
}

// CollectionURI is the address of the order collection.
func CollectionURI(baseURI string) string {
	return strings.TrimRight(baseURI, "/") + "/api"
}

// OrderURI is the address of a single order.
func OrderURI(baseURI string, id uuid.UUID) string {
	return CollectionURI(baseURI) + "/" + id.String()
}
