package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordermapper "github.com/Apurer/orders-api/internal/domains/orders/adapters/http/mapper"
	ordermemory "github.com/Apurer/orders-api/internal/domains/orders/adapters/memory"
	orderapp "github.com/Apurer/orders-api/internal/domains/orders/application"
	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/platform/auth"
	apierrors "github.com/Apurer/orders-api/internal/shared/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var knownCustomer = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type staticDirectory struct{}

func (staticDirectory) FindByID(_ context.Context, id uuid.UUID) ports.CustomerLookup {
	if id == knownCustomer {
		return ports.CustomerFound{Customer: domain.Customer{LastName: "Muster"}}
	}
	return ports.CustomerUnreachable{Kind: ports.FailureNotFound}
}

type blockingRepo struct{ ports.Repository }

func (blockingRepo) GetByID(ctx context.Context, _ uuid.UUID) (domain.Order, error) {
	<-ctx.Done()
	return domain.Order{}, ctx.Err()
}

func newTestRouter(t *testing.T, repo ports.Repository, cfg auth.Config) *gin.Engine {
	t.Helper()
	svc := orderapp.NewService(repo, staticDirectory{}, orderapp.WithTimeouts(20*time.Millisecond, time.Second))
	return NewRouter(RouterConfig{Orders: NewOrdersAPI(svc), Auth: cfg})
}

func openRouter(t *testing.T) (*gin.Engine, *ordermemory.Repository) {
	repo := ordermemory.NewRepository()
	return newTestRouter(t, repo, auth.Config{Disabled: true}), repo
}

func perform(router *gin.Engine, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validBody(customer uuid.UUID) map[string]any {
	return map[string]any{
		"customerId": customer.String(),
		"lines": []map[string]any{
			{"articleId": uuid.NewString(), "unitPrice": "9.99", "quantity": 2},
		},
	}
}

func createOrder(t *testing.T, router *gin.Engine, customer uuid.UUID) ordermapper.Order {
	t.Helper()
	rec := perform(router, http.MethodPost, "/api", validBody(customer), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out ordermapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateOrder_Created(t *testing.T) {
	router, _ := openRouter(t)

	rec := perform(router, http.MethodPost, "/api", validBody(knownCustomer), map[string]string{"X-Forwarded-Proto": "https"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var out ordermapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "https://example.com/api/"+out.ID, rec.Header().Get("Location"))
	assert.Equal(t, `"0"`, rec.Header().Get("ETag"))
	assert.Equal(t, domain.CustomerNameNotFound, out.CustomerName)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, int32(2), out.Lines[0].Quantity)
}

func TestCreateOrder_Violations(t *testing.T) {
	router, repo := openRouter(t)
	body := map[string]any{
		"customerId": knownCustomer.String(),
		"lines": []map[string]any{
			{"articleId": uuid.NewString(), "unitPrice": -1, "quantity": 0},
		},
	}

	rec := perform(router, http.MethodPost, "/api", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "The minimum quantity is 1.", problem.Violations[domain.KeyQuantityMin])
	assert.Equal(t, "The unit price must be at least 0.", problem.Violations[domain.KeyUnitPriceMin])

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateOrder_EmptyLinesAndFutureDate(t *testing.T) {
	router, _ := openRouter(t)
	body := map[string]any{
		"customerId": knownCustomer.String(),
		"date":       time.Now().AddDate(0, 0, 2).Format(time.DateOnly),
		"lines":      []any{},
	}

	rec := perform(router, http.MethodPost, "/api", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem.Violations, domain.KeyLinesNotEmpty)
	assert.Contains(t, problem.Violations, domain.KeyDateBeforeOrEqual)
}

func TestCreateOrder_Malformed(t *testing.T) {
	router, _ := openRouter(t)

	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodPost, "/api", `{"customerId":`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodPost, "/api", map[string]any{"customerId": "x"}, nil).Code)
}

func TestGetOrder_ConditionalRead(t *testing.T) {
	router, _ := openRouter(t)
	created := createOrder(t, router, knownCustomer)
	target := "/api/" + created.ID

	rec := perform(router, http.MethodGet, target, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"0"`, rec.Header().Get("ETag"))
	var out ordermapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Muster", out.CustomerName)
	assert.Equal(t, "http://example.com"+target, out.Links["self"].Href)

	rec = perform(router, http.MethodGet, target, nil, map[string]string{"If-None-Match": `"0"`})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = perform(router, http.MethodGet, target, nil, map[string]string{"If-None-Match": `"7"`})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = perform(router, http.MethodGet, target, nil, map[string]string{"If-None-Match": "0"})
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestGetOrder_NotFoundAndMalformedID(t *testing.T) {
	router, _ := openRouter(t)

	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/api/"+uuid.NewString(), nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/api/not-a-uuid", nil, nil).Code)
}

func TestGetOrder_Timeout(t *testing.T) {
	router := newTestRouter(t, blockingRepo{}, auth.Config{Disabled: true})

	rec := perform(router, http.MethodGet, "/api/"+uuid.NewString(), nil, nil)
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeTimeout, problem.Type)
}

func TestListOrders(t *testing.T) {
	router, _ := openRouter(t)

	rec := perform(router, http.MethodGet, "/api", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_embedded":{"orders":[]},"_links":{"self":{"href":"http://example.com/api"}}}`, rec.Body.String())

	other := uuid.New()
	createOrder(t, router, knownCustomer)
	createOrder(t, router, other)
	createOrder(t, router, knownCustomer)

	var all ordermapper.Collection
	rec = perform(router, http.MethodGet, "/api", nil, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all.Embedded.Orders, 3)
	assert.Equal(t, "Muster", all.Embedded.Orders[0].CustomerName)
	assert.Equal(t, domain.CustomerNameNotFound, all.Embedded.Orders[1].CustomerName)

	var mine ordermapper.Collection
	rec = perform(router, http.MethodGet, "/api?customerId="+knownCustomer.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine.Embedded.Orders, 2)
}

func TestListOrders_QueryRules(t *testing.T) {
	router, _ := openRouter(t)
	createOrder(t, router, knownCustomer)

	cases := []struct {
		target string
		status int
	}{
		{"/api?customerId=" + uuid.NewString(), http.StatusNotFound},
		{"/api?customerId=" + knownCustomer.String() + "&page=1", http.StatusNotFound},
		{"/api?customerId=a&customerId=b", http.StatusNotFound},
		{"/api?status=open", http.StatusNotFound},
		{"/api?customerId=not-a-uuid", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			assert.Equal(t, tc.status, perform(router, http.MethodGet, tc.target, nil, nil).Code)
		})
	}
}

func TestRouter_RoleChecks(t *testing.T) {
	admin, err := auth.NewUser("admin", "p", auth.RoleAdmin)
	require.NoError(t, err)
	shopper, err := auth.NewUser("shopper", "s", auth.RoleCustomer)
	require.NoError(t, err)
	router := newTestRouter(t, ordermemory.NewRepository(), auth.Config{Users: []auth.User{admin, shopper}})

	basic := func(user, pass string) map[string]string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth(user, pass)
		return map[string]string{"Authorization": req.Header.Get("Authorization")}
	}

	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/api", nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, perform(router, http.MethodGet, "/api", nil, basic("shopper", "s")).Code)
	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/api", nil, basic("admin", "p")).Code)
	assert.Equal(t, http.StatusForbidden, perform(router, http.MethodPost, "/api", validBody(knownCustomer), basic("admin", "p")).Code)
	assert.Equal(t, http.StatusCreated, perform(router, http.MethodPost, "/api", validBody(knownCustomer), basic("shopper", "s")).Code)
	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/health", nil, nil).Code)
}

func TestRouter_CORS(t *testing.T) {
	svc := orderapp.NewService(ordermemory.NewRepository(), staticDirectory{})
	router := NewRouter(RouterConfig{
		Orders:         NewOrdersAPI(svc),
		Auth:           auth.Config{Disabled: true},
		AllowedOrigins: []string{"http://localhost:5173"},
	})

	rec := perform(router, http.MethodGet, "/api", nil, map[string]string{"Origin": "http://localhost:5173"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = perform(router, http.MethodGet, "/api", nil, map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
