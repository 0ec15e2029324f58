package email

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/logger"
	"vorve-checkout-api/models"
	"vorve-checkout-api/utils"
)

type SenderConfig struct {
	Domain    string
	BrandName string
}

// Sender renders a NotificationJob and hands it to the mail provider. It makes
// at most one provider call per job and never retries.
type Sender struct {
	mailer Mailer
	cfg    SenderConfig
	log    *zap.Logger
}

func NewSender(mailer Mailer, cfg SenderConfig, log *zap.Logger) *Sender {
	return &Sender{mailer: mailer, cfg: cfg, log: log.Named("notifications")}
}

// From returns the sender address for a kind: internal sale alerts come from
// notifications@, everything else from no-reply@.
func (s *Sender) From(kind models.NotificationKind) string {
	switch kind {
	case models.NotificationInternalSale:
		return fmt.Sprintf("%s Notifications <notifications@%s>", s.cfg.BrandName, s.cfg.Domain)
	case models.NotificationContact:
		return fmt.Sprintf("Contact Form <no-reply@%s>", s.cfg.Domain)
	default:
		return fmt.Sprintf("%s <no-reply@%s>", s.cfg.BrandName, s.cfg.Domain)
	}
}

// Send delivers one job. Failures come back as *apperr.NotificationError for
// the caller to log; nothing is re-driven.
func (s *Sender) Send(ctx context.Context, job models.NotificationJob) (models.SentNotification, error) {
	sent := models.SentNotification{Kind: job.Kind, Recipient: job.Recipient}
	fail := func(err error) (models.SentNotification, error) {
		return sent, &apperr.NotificationError{Kind: string(job.Kind), Recipient: job.Recipient, Err: err}
	}

	if job.Recipient == "" {
		return fail(errors.New("no recipient"))
	}

	subject, html, err := Render(job.Kind, s.cfg.BrandName, utils.CurrencySymbol(job.TemplateData.Currency), job.TemplateData)
	if err != nil {
		return fail(err)
	}

	id, err := s.mailer.Send(ctx, Message{
		From:    s.From(job.Kind),
		To:      []string{job.Recipient},
		Subject: subject,
		HTML:    html,
		ReplyTo: job.ReplyTo,
	})
	if err != nil {
		return fail(err)
	}

	sent.MessageID = id
	s.log.Info("email sent",
		zap.String("kind", string(job.Kind)),
		zap.String("to", logger.MaskEmail(job.Recipient)),
		zap.String("message_id", id),
	)
	return sent, nil
}
