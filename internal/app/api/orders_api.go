package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ordermapper "github.com/Apurer/orders-api/internal/domains/orders/adapters/http/mapper"
	orderapp "github.com/Apurer/orders-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/orders-api/internal/domains/orders/application/types"
	orderports "github.com/Apurer/orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/orders-api/internal/shared/errors"
)

const customerIDParam = "customerId"

// OrdersAPI wires HTTP transport with the orders service.
type OrdersAPI struct {
	service   orderports.Service
	responder *apierrors.Responder
	now       func() time.Time
}

// NewOrdersAPI creates an OrdersAPI backed by the provided service.
func NewOrdersAPI(service orderports.Service) *OrdersAPI {
	return &OrdersAPI{service: service, responder: newOrderResponder(), now: time.Now}
}

// Get /api
// Lists all orders, or the orders of one customer with ?customerId=.
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	query := c.Request.URL.Query()
	base := baseURI(c)
	self := ordermapper.CollectionURI(base)
	if raw := c.Request.URL.RawQuery; raw != "" {
		self += "?" + raw
	}

	if len(query) == 0 {
		orders, err := api.service.FindAll(c.Request.Context())
		if err != nil {
			api.responder.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ordermapper.FromDomainOrders(orders, base, self))
		return
	}

	values, ok := query[customerIDParam]
	if len(query) != 1 || !ok || len(values) != 1 {
		api.responder.Respond(c, apierrors.ErrNotFound.WithDetail("only a single customerId search is supported"))
		return
	}
	customerID, err := uuid.Parse(strings.TrimSpace(values[0]))
	if err != nil {
		api.responder.BadRequest(c, "customerId must be a UUID")
		return
	}

	result, err := api.service.FindByCustomerID(c.Request.Context(), customerID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	switch r := result.(type) {
	case ordertypes.CustomerOrdersFound:
		c.JSON(http.StatusOK, ordermapper.FromDomainOrders(r.Orders, base, self))
	case ordertypes.CustomerOrdersAbsent:
		api.responder.NotFound(c, "orders of customer", r.CustomerID.String())
	}
}

// Get /api/:id
// Finds an order by ID, honouring If-None-Match.
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	id, ok := api.parseID(c)
	if !ok {
		return
	}
	result, err := api.service.FindByID(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	switch r := result.(type) {
	case ordertypes.FindNotFound:
		api.responder.NotFound(c, "order", r.ID.String())
	case ordertypes.FindSuccess:
		api.respondConditional(c, orderapp.EvaluateConditionalRead(r.Order, ifNoneMatch(c)))
	}
}

func (api *OrdersAPI) respondConditional(c *gin.Context, read ordertypes.ConditionalRead) {
	switch r := read.(type) {
	case ordertypes.ReadInvalidToken:
		api.responder.Respond(c, apierrors.ErrNotAcceptable.WithDetail("If-None-Match must be a quoted version"))
	case ordertypes.ReadUnchanged:
		c.Header("ETag", r.Token)
		c.Status(http.StatusNotModified)
	case ordertypes.ReadChanged:
		c.Header("ETag", r.Token)
		c.JSON(http.StatusOK, ordermapper.FromDomainOrder(r.Order, baseURI(c)))
	}
}

// Post /api
// Validates and stores a new order.
func (api *OrdersAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.OrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	order, err := ordermapper.ToDomainOrder(payload, api.now())
	if err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.service.Create(c.Request.Context(), order)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	switch r := result.(type) {
	case ordertypes.ConstraintViolations:
		api.responder.Violations(c, r.Violations.Map())
	case ordertypes.CreateSuccess:
		base := baseURI(c)
		c.Header("Location", ordermapper.OrderURI(base, r.Order.ID))
		c.Header("ETag", r.Order.VersionToken())
		c.JSON(http.StatusCreated, ordermapper.FromDomainOrder(r.Order, base))
	}
}

func (api *OrdersAPI) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.responder.BadRequest(c, "order id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func ifNoneMatch(c *gin.Context) *string {
	values, ok := c.Request.Header[http.CanonicalHeaderKey("If-None-Match")]
	if !ok || len(values) == 0 {
		return nil
	}
	token := strings.TrimSpace(values[0])
	return &token
}

// baseURI rebuilds scheme and host as the client saw them, honouring proxy headers.
func baseURI(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := c.Request.Host
	if forwarded := strings.TrimSpace(c.GetHeader("X-Forwarded-Host")); forwarded != "" {
		host = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + host
}
