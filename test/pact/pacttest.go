//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Participants of the two contracts: the portal consumes the orders API,
// the orders API consumes the customer service.
const (
	ProviderName = "orders-api"
	ConsumerName = "order-portal"

	CustomerProviderName = "customer-service"
)

const (
	StateOrdersBaseline = "orders baseline"
	StateOrderExists    = "order 10000000-0000-0000-0000-000000000001 exists"
	StateOrderMissing   = "no order with id 10000000-0000-0000-0000-000000000999"

	StateCustomerExists  = "customer 00000000-0000-0000-0000-000000000001 exists"
	StateCustomerMissing = "no customer with id 00000000-0000-0000-0000-000000000999"
)

const (
	ExistingOrderID = "10000000-0000-0000-0000-000000000001"
	MissingOrderID  = "10000000-0000-0000-0000-000000000999"

	ExistingCustomerID = "00000000-0000-0000-0000-000000000001"
	MissingCustomerID  = "00000000-0000-0000-0000-000000000999"
	CustomerLastName   = "Alpha"

	UUIDPattern = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file path of the portal contract.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCreatePayload is a valid create request for the existing customer.
func ExampleCreatePayload() map[string]any {
	return map[string]any{
		"customerId": ExistingCustomerID,
		"date":       "2021-01-01",
		"lines": []map[string]any{
			{"articleId": "20000000-0000-0000-0000-000000000001", "unitPrice": "10", "quantity": 1},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
