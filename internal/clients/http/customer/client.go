package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

var (
	// ErrNotFound is returned when the customer service answers 404.
	ErrNotFound = errors.New("customer not found")
	// ErrUnauthorized is returned when the customer service rejects the credentials (401/403).
	ErrUnauthorized = errors.New("customer service rejected credentials")
)

// StatusError reports any other non-2xx answer.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("customer service unexpected status: %s", e.Status)
}

// Customer is the subset of the customer resource the orders service reads.
type Customer struct {
	LastName string `json:"lastName"`
	Email    string `json:"email"`
}

// Client calls the customer service REST API with basic auth.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	username   string
	password   string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBasicAuth sets the credentials sent with every request.
func WithBasicAuth(username, password string) Option {
	return func(client *Client) {
		client.username = strings.TrimSpace(username)
		client.password = password
	}
}

// NewClient instantiates the customer client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("customer service base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse customer service URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("customer service URL %q must be absolute", baseURL)
	}
	c := &Client{baseURL: parsed, httpClient: &http.Client{Timeout: 5 * time.Second}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// GetCustomer fetches GET {base}/api/{id}.
func (c *Client) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	if c == nil || c.baseURL == nil {
		return Customer{}, errors.New("customer client not configured")
	}
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id.String())
	if err != nil {
		return Customer{}, fmt.Errorf("encode customer id: %w", err)
	}
	target := c.baseURL.JoinPath("api", pathParam)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Customer{}, fmt.Errorf("build customer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Customer{}, fmt.Errorf("call customer service: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		var customer Customer
		if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
			return Customer{}, fmt.Errorf("decode customer: %w", err)
		}
		return customer, nil
	case resp.StatusCode == http.StatusNotFound:
		return Customer{}, ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Customer{}, ErrUnauthorized
	default:
		return Customer{}, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
}
