package paddle

import (
	"context"
	"fmt"
	"sync"

	paddlesdk "github.com/PaddleHQ/paddle-go-sdk/v4"
	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/models"
)

const (
	SandboxBaseURL    = "https://sandbox-api.paddle.com"
	ProductionBaseURL = "https://api.paddle.com"
	providerName      = "paddle"
)

// Client wraps the provider SDK with the calls the fulfillment pipeline needs.
type Client struct {
	sdk *paddlesdk.SDK
}

func NewClient(apiKey, environment string) (*Client, error) {
	return NewClientWithBaseURL(apiKey, BaseURLFor(environment))
}

func NewClientWithBaseURL(apiKey, baseURL string) (*Client, error) {
	sdk, err := paddlesdk.New(apiKey, paddlesdk.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}
	return &Client{sdk: sdk}, nil
}

func BaseURLFor(environment string) string {
	if environment == "production" {
		return ProductionBaseURL
	}
	return SandboxBaseURL
}

// GetCustomer fetches a customer record by id.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	res, err := c.sdk.GetCustomer(ctx, &paddlesdk.GetCustomerRequest{CustomerID: customerID})
	if err != nil {
		return nil, &apperr.UpstreamError{Provider: providerName, Message: err.Error(), Err: err}
	}

	customer := &models.Customer{ID: res.ID, Email: res.Email, Status: string(res.Status)}
	if res.Name != nil {
		customer.Name = *res.Name
	}
	return customer, nil
}

// LazyClient builds the Client on first use. A missing API key is reported as
// a ConfigurationError on every call rather than at startup.
type LazyClient struct {
	apiKey      string
	environment string
	log         *zap.Logger

	once   sync.Once
	client *Client
	err    error
}

func NewLazyClient(apiKey, environment string, log *zap.Logger) *LazyClient {
	return &LazyClient{apiKey: apiKey, environment: environment, log: log.Named("paddle")}
}

func (l *LazyClient) Get() (*Client, error) {
	l.once.Do(func() {
		if l.apiKey == "" {
			l.err = &apperr.ConfigurationError{Setting: "PADDLE_API_KEY"}
			l.log.Error("payment provider client unavailable", zap.Error(l.err))
			return
		}
		l.client, l.err = NewClient(l.apiKey, l.environment)
		if l.err != nil {
			l.log.Error("payment provider client unavailable", zap.Error(l.err))
			return
		}
		l.log.Info("payment provider client initialized", zap.String("environment", l.environment))
	})
	return l.client, l.err
}

// GetCustomer satisfies the CustomerFetcher interface used by the dispatcher.
func (l *LazyClient) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	c, err := l.Get()
	if err != nil {
		return nil, err
	}
	return c.GetCustomer(ctx, customerID)
}
