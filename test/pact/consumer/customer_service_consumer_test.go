//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	customerclient "github.com/Apurer/orders-api/internal/clients/http/customer"
	pacttest "github.com/Apurer/orders-api/test/pact"
)

func TestCustomerServiceContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ProviderName,
		Provider: pacttest.CustomerProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	basicAuth := matchers.Regex("Basic YWRtaW46cA==", `Basic [A-Za-z0-9+/=]+`)

	pact.AddInteraction().
		Given(pacttest.StateCustomerExists).
		UponReceiving("a lookup of an existing customer").
		WithRequest("GET", "/api/"+pacttest.ExistingCustomerID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", basicAuth)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.Regex("application/json", `application\/(hal\+)?json.*`))
			b.JSONBody(matchers.Map{
				"lastName": matchers.Like(pacttest.CustomerLastName),
				"email":    matchers.Like("alpha@acme.de"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCustomerMissing).
		UponReceiving("a lookup of a missing customer").
		WithRequest("GET", "/api/"+pacttest.MissingCustomerID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", basicAuth)
		}).
		WillRespondWith(http.StatusNotFound)

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		client, err := customerclient.NewClient(
			fmt.Sprintf("http://%s:%d", host, config.Port),
			customerclient.WithBasicAuth("admin", "p"),
		)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		customer, err := client.GetCustomer(ctx, uuid.MustParse(pacttest.ExistingCustomerID))
		if err != nil {
			return fmt.Errorf("get customer: %w", err)
		}
		if customer.LastName != pacttest.CustomerLastName {
			return fmt.Errorf("expected last name %q, got %q", pacttest.CustomerLastName, customer.LastName)
		}

		if _, err := client.GetCustomer(ctx, uuid.MustParse(pacttest.MissingCustomerID)); !errors.Is(err, customerclient.ErrNotFound) {
			return fmt.Errorf("expected ErrNotFound, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}
