package models

type NotificationKind string

const (
	NotificationConfirmation  NotificationKind = "confirmation"
	NotificationInternalSale  NotificationKind = "internal_sale"
	NotificationPaymentFailed NotificationKind = "payment_failed"
	NotificationContact       NotificationKind = "contact"
)

// NotificationJob lives for the duration of one event. There is no queue
// behind it: a failed job is logged and dropped.
type NotificationJob struct {
	Kind         NotificationKind
	Recipient    string
	ReplyTo      string
	TemplateData TemplateData
}

// TemplateData holds every field a template may interpolate.
type TemplateData struct {
	CustomerName  string
	CustomerEmail string
	TransactionID string
	Amount        string
	Currency      string
	Date          string
	Company       string
	Phone         string
	Requests      string
	Message       string
	RetryURL      string
}

// SentNotification is the success half of a send: the provider-assigned id.
type SentNotification struct {
	Kind      NotificationKind
	Recipient string
	MessageID string
}
