package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
)

const (
	DefaultBaseURL = "https://api.resend.com"
	RequestTimeout = 15 * time.Second
	providerName   = "resend"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Mailer sends a message and returns the provider-assigned id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Client sends mail through the provider SDK.
type Client struct {
	sdk *resend.Client
}

func NewClient(apiKey string) (*Client, error) {
	return NewClientWithBaseURL(apiKey, DefaultBaseURL)
}

func NewClientWithBaseURL(apiKey, baseURL string) (*Client, error) {
	// The SDK resolves endpoint paths relative to the base, so it needs the trailing slash.
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid mail provider url: %w", err)
	}
	sdk := resend.NewCustomClient(&http.Client{Timeout: RequestTimeout}, apiKey)
	sdk.BaseURL = base
	return &Client{sdk: sdk}, nil
}

func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	res, err := c.sdk.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return "", upstreamError(err)
	}
	return res.Id, nil
}

func upstreamError(err error) error {
	var rateErr *resend.RateLimitError
	if errors.As(err, &rateErr) {
		return &apperr.UpstreamError{
			Provider: providerName,
			Status:   http.StatusTooManyRequests,
			Code:     "rate_limit_exceeded",
			Message:  rateErr.Message,
			Err:      err,
		}
	}
	return &apperr.UpstreamError{
		Provider: providerName,
		Message:  strings.TrimPrefix(err.Error(), "[ERROR]: "),
		Err:      err,
	}
}

// LazyClient defers construction of the mail client until the first send and
// reports a missing key as a ConfigurationError instead of failing deep
// inside a request.
type LazyClient struct {
	apiKey string
	log    *zap.Logger

	once   sync.Once
	client *Client
	err    error
}

func NewLazyClient(apiKey string, log *zap.Logger) *LazyClient {
	return &LazyClient{apiKey: apiKey, log: log.Named("resend")}
}

func (l *LazyClient) Get() (*Client, error) {
	l.once.Do(func() {
		if l.apiKey == "" {
			l.err = &apperr.ConfigurationError{Setting: "RESEND_API_KEY"}
			l.log.Error("mail provider client unavailable", zap.Error(l.err))
			return
		}
		l.client, l.err = NewClient(l.apiKey)
		if l.err != nil {
			l.log.Error("mail provider client unavailable", zap.Error(l.err))
		}
	})
	return l.client, l.err
}

func (l *LazyClient) Configured() bool {
	return l.apiKey != ""
}

func (l *LazyClient) Send(ctx context.Context, msg Message) (string, error) {
	c, err := l.Get()
	if err != nil {
		return "", err
	}
	return c.Send(ctx, msg)
}
