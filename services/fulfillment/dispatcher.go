package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/logger"
	"vorve-checkout-api/models"
	"vorve-checkout-api/services/paddle"
	"vorve-checkout-api/utils"
)

// CustomerFetcher looks a customer up by provider id.
type CustomerFetcher interface {
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
}

// Notifier sends one notification job.
type Notifier interface {
	Send(ctx context.Context, job models.NotificationJob) (models.SentNotification, error)
}

type Config struct {
	SalesAddress string
	PublicDomain string
}

// Result records what happened to one notification job.
type Result struct {
	Kind      models.NotificationKind
	Recipient string
	MessageID string
	Skipped   string
	Err       error
}

// Outcome is the dispatcher's report for one event. It is for logs and tests
// only; the webhook response does not depend on it.
type Outcome struct {
	EventType models.EventType
	Handled   bool
	Results   []Result
}

// Dispatcher routes verified events to their handlers.
type Dispatcher struct {
	customers CustomerFetcher
	notifier  Notifier
	ledger    Ledger
	cfg       Config
	log       *zap.Logger
	now       func() time.Time
}

// NewDispatcher builds a dispatcher. ledger may be nil, in which case every
// delivery of an event produces its notifications again.
func NewDispatcher(customers CustomerFetcher, notifier Notifier, ledger Ledger, cfg Config, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		customers: customers,
		notifier:  notifier,
		ledger:    ledger,
		cfg:       cfg,
		log:       log.Named("dispatcher"),
		now:       time.Now,
	}
}

// Dispatch never returns an error: handler failures are logged and reported in
// the Outcome so the webhook can still acknowledge the delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, event *models.WebhookEvent) Outcome {
	log := d.log.With(zap.String("event_id", event.EventID), zap.String("event_type", string(event.EventType)))
	out := Outcome{EventType: event.EventType}

	switch event.EventType {
	case models.EventTransactionCompleted:
		out.Handled = true
		out.Results = d.handleTransactionCompleted(ctx, event, log)
	case models.EventTransactionPaymentFailed:
		out.Handled = true
		out.Results = d.handlePaymentFailed(ctx, event, log)
	case models.EventSubscriptionCreated, models.EventCustomerCreated:
		out.Handled = true
		log.Info("event acknowledged, no action configured")
	default:
		log.Info("unhandled event type")
	}

	for _, r := range out.Results {
		fields := []zap.Field{
			zap.String("kind", string(r.Kind)),
			zap.String("to", logger.MaskEmail(r.Recipient)),
		}
		switch {
		case r.Err != nil:
			log.Error("notification failed", append(fields, zap.Error(r.Err))...)
		case r.Skipped != "":
			log.Warn("notification skipped", append(fields, zap.String("reason", r.Skipped))...)
		}
	}
	return out
}

func (d *Dispatcher) handleTransactionCompleted(ctx context.Context, event *models.WebhookEvent, log *zap.Logger) []Result {
	txn, err := decodeTransaction(event, log)
	if err != nil {
		log.Error("cannot decode transaction", zap.Error(err))
		return nil
	}
	log = log.With(zap.String("transaction_id", txn.ID))

	d.enrichCustomer(ctx, txn, log)
	customer := paddle.ResolveCustomer(txn)
	data := d.templateData(txn, customer)

	results := make([]Result, 0, 2)

	// The two sends are independent: a failed confirmation must not hold back the sales alert.
	if customer.HasEmail() {
		results = append(results, d.send(ctx, txn.ID, models.NotificationJob{
			Kind:         models.NotificationConfirmation,
			Recipient:    customer.Email,
			TemplateData: data,
		}))
	} else {
		log.Error("no customer email found in transaction, confirmation dropped")
		results = append(results, Result{Kind: models.NotificationConfirmation, Skipped: "no customer email"})
	}

	if d.cfg.SalesAddress == "" {
		results = append(results, Result{
			Kind: models.NotificationInternalSale,
			Err:  &apperr.ConfigurationError{Setting: "SALES_NOTIFICATION_EMAIL"},
		})
	} else {
		results = append(results, d.send(ctx, txn.ID, models.NotificationJob{
			Kind:         models.NotificationInternalSale,
			Recipient:    d.cfg.SalesAddress,
			ReplyTo:      customer.Email,
			TemplateData: data,
		}))
	}
	return results
}

func (d *Dispatcher) handlePaymentFailed(ctx context.Context, event *models.WebhookEvent, log *zap.Logger) []Result {
	txn, err := decodeTransaction(event, log)
	if err != nil {
		log.Error("cannot decode transaction", zap.Error(err))
		return nil
	}
	log = log.With(zap.String("transaction_id", txn.ID))

	d.enrichCustomer(ctx, txn, log)
	customer := paddle.ResolveCustomer(txn)
	if !customer.HasEmail() {
		log.Info("payment failed without resolvable customer email, nothing to send")
		return nil
	}

	data := d.templateData(txn, customer)
	data.RetryURL = d.cfg.PublicDomain + "/pricing"

	return []Result{d.send(ctx, txn.ID, models.NotificationJob{
		Kind:         models.NotificationPaymentFailed,
		Recipient:    customer.Email,
		TemplateData: data,
	})}
}

// enrichCustomer fills txn.Customer from the provider when the payload only
// carries a customer id. Failure is tolerated; the email degrades to a
// generic greeting.
func (d *Dispatcher) enrichCustomer(ctx context.Context, txn *models.Transaction, log *zap.Logger) {
	if txn.Customer != nil || txn.CustomerID == "" || d.customers == nil {
		return
	}
	c, err := d.customers.GetCustomer(ctx, txn.CustomerID)
	if err != nil {
		log.Warn("customer lookup failed", zap.String("customer_id", txn.CustomerID), zap.Error(err))
		return
	}
	txn.Customer = c
}

func (d *Dispatcher) send(ctx context.Context, txnID string, job models.NotificationJob) Result {
	res := Result{Kind: job.Kind, Recipient: job.Recipient}

	key := ""
	if d.ledger != nil && txnID != "" {
		key = fmt.Sprintf("%s:%s", job.Kind, txnID)
		claimed, err := d.ledger.Claim(ctx, key)
		if err != nil {
			d.log.Warn("idempotency ledger unavailable, sending anyway", zap.String("key", key), zap.Error(err))
			key = ""
		} else if !claimed {
			res.Skipped = "duplicate delivery"
			return res
		}
	}

	sent, err := d.notifier.Send(ctx, job)
	if err != nil {
		res.Err = err
		if key != "" {
			if relErr := d.ledger.Release(ctx, key); relErr != nil {
				d.log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}
		return res
	}
	res.MessageID = sent.MessageID
	return res
}

func (d *Dispatcher) templateData(txn *models.Transaction, customer models.ResolvedCustomer) models.TemplateData {
	var total models.MinorUnits
	if txn.Details != nil && txn.Details.Totals != nil {
		total = txn.Details.Totals.Total
	}
	date := txn.BilledAt
	if date == "" {
		date = txn.CreatedAt
	}
	return models.TemplateData{
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		TransactionID: txn.ID,
		Amount:        utils.FormatMinorUnits(total),
		Currency:      txn.CurrencyCode,
		Date:          utils.FormatTimestamp(date, d.now()),
		Company:       paddle.CustomDataString(txn, "company"),
		Phone:         paddle.CustomDataString(txn, "phone"),
		Requests:      paddle.CustomDataString(txn, "projectDetails"),
	}
}

func decodeTransaction(event *models.WebhookEvent, log *zap.Logger) (*models.Transaction, error) {
	if len(event.Data) == 0 {
		return nil, fmt.Errorf("event has no data")
	}
	var txn models.Transaction
	err := json.Unmarshal(event.Data, &txn)
	if err == nil {
		return &txn, nil
	}

	// An unreadable amount must not cost the customer their confirmation:
	// decode again without details, keeping only the customer found there.
	var fields map[string]json.RawMessage
	if json.Unmarshal(event.Data, &fields) != nil {
		return nil, err
	}
	details, ok := fields["details"]
	if !ok {
		return nil, err
	}
	delete(fields, "details")
	stripped, mErr := json.Marshal(fields)
	if mErr != nil {
		return nil, err
	}
	txn = models.Transaction{}
	if json.Unmarshal(stripped, &txn) != nil {
		return nil, err
	}

	var partial struct {
		Customer *models.Customer `json:"customer"`
	}
	if json.Unmarshal(details, &partial) == nil && partial.Customer != nil {
		txn.Details = &models.TransactionDetails{Customer: partial.Customer}
	}
	log.Warn("transaction totals unreadable, amount omitted", zap.String("transaction_id", txn.ID), zap.Error(err))
	return &txn, nil
}
