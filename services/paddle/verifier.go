package paddle

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	paddlesdk "github.com/PaddleHQ/paddle-go-sdk/v4"

	"vorve-checkout-api/apperr"
	"vorve-checkout-api/models"
)

const SignatureHeader = "Paddle-Signature"

// Verifier checks webhook signatures of the form "ts=<unix>;h1=<hex>". The
// signed payload is "<ts>:<raw body>", HMAC-SHA256 keyed by the notification
// secret. Several h1 values may be present while a secret is being rotated;
// each one is checked by the SDK verifier on its own.
type Verifier struct {
	secret    []byte
	sdk       *paddlesdk.WebhookVerifier
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	return &Verifier{
		secret:    []byte(secret),
		sdk:       paddlesdk.NewWebhookVerifier(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

// WithClock replaces the time source; tests use it to pin the timestamp window.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

func (v *Verifier) Configured() bool {
	return len(v.secret) > 0
}

// Verify returns nil only when one of the header's h1 values matches the body.
func (v *Verifier) Verify(header string, body []byte) error {
	if strings.TrimSpace(header) == "" {
		return apperr.ErrMissingSignature
	}
	if !v.Configured() {
		return &apperr.ConfigurationError{Setting: "PADDLE_WEBHOOK_SECRET"}
	}

	ts, hashes, err := parseSignature(header)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidSignature, err)
	}

	if v.tolerance > 0 {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad timestamp", apperr.ErrInvalidSignature)
		}
		skew := v.now().Sub(time.Unix(sec, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > v.tolerance {
			return fmt.Errorf("%w: timestamp outside tolerance (%s)", apperr.ErrInvalidSignature, skew.Truncate(time.Second))
		}
	}

	for _, h := range hashes {
		if _, err := hex.DecodeString(h); err != nil {
			continue
		}
		if v.matches(ts, h, body) {
			return nil
		}
	}
	return fmt.Errorf("%w: no matching h1", apperr.ErrInvalidSignature)
}

func (v *Verifier) matches(ts, h1 string, body []byte) bool {
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set(SignatureHeader, "ts="+ts+";h1="+h1)
	ok, err := v.sdk.Verify(req)
	return err == nil && ok
}

// Unmarshal verifies the signature and only then decodes the envelope.
func (v *Verifier) Unmarshal(body []byte, header string) (*models.WebhookEvent, error) {
	if err := v.Verify(header, body); err != nil {
		return nil, err
	}
	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedPayload, err)
	}
	if event.EventType == "" {
		return nil, fmt.Errorf("%w: missing event_type", apperr.ErrMalformedPayload)
	}
	return &event, nil
}

// Sign produces a header value for body at time ts. The SDK only verifies,
// so signing for replays and tests is done here.
func Sign(secret string, ts time.Time, body []byte) string {
	stamp := strconv.FormatInt(ts.Unix(), 10)
	return fmt.Sprintf("ts=%s;h1=%s", stamp, hex.EncodeToString(computeHMAC([]byte(secret), stamp, body)))
}

func computeHMAC(secret []byte, ts string, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(ts))
	mac.Write([]byte(":"))
	mac.Write(body)
	return mac.Sum(nil)
}

func parseSignature(header string) (string, []string, error) {
	var ts string
	var hashes []string
	for _, part := range strings.Split(header, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "h1":
			hashes = append(hashes, value)
		}
	}
	if ts == "" || len(hashes) == 0 {
		return "", nil, fmt.Errorf("malformed signature header")
	}
	return ts, hashes, nil
}
