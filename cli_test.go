package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"vorve-checkout-api/config"
	"vorve-checkout-api/services/paddle"
)

func TestWriteSignatureVerifies(t *testing.T) {
	body := []byte(`{"event_type":"transaction.completed","data":{}}`)
	ts := time.Now().Truncate(time.Second)

	var out bytes.Buffer
	if err := writeSignature(&out, "secret", ts, body); err != nil {
		t.Fatalf("writeSignature: %v", err)
	}

	line := strings.TrimSpace(out.String())
	prefix := paddle.SignatureHeader + ": "
	if !strings.HasPrefix(line, prefix) {
		t.Fatalf("unexpected output %q", line)
	}

	v := paddle.NewVerifier("secret", 5*time.Second).WithClock(func() time.Time { return ts })
	if err := v.Verify(strings.TrimPrefix(line, prefix), body); err != nil {
		t.Fatalf("signature should verify: %v", err)
	}
}

func TestWriteSignatureRequiresSecret(t *testing.T) {
	if err := writeSignature(&bytes.Buffer{}, "", time.Now(), []byte("{}")); err == nil {
		t.Fatalf("expected an error without a secret")
	}
}

func TestPrintChecks(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{PublicDomain: "https://vorve.tech"},
		Paddle: config.PaddleConfig{
			APIKey:        "pdl_key",
			WebhookSecret: "pdl_ntfset",
			Environment:   "production",
			ClientToken:   "live_abc",
			PriceID:       "pri_01",
		},
		Mail: config.MailConfig{APIKey: "re_1", SalesAddress: "sales@vorve.tech"},
	}

	var out bytes.Buffer
	if err := printChecks(&out, cfg); err != nil {
		t.Fatalf("expected a healthy report, got %v\n%s", err, out.String())
	}

	cfg.Warnings = []string{"error loading .env file: open .env: no such file or directory"}
	out.Reset()
	if err := printChecks(&out, cfg); err != nil {
		t.Fatalf("warnings alone must not fail the report, got %v", err)
	}
	if !strings.Contains(out.String(), "[warn] error loading .env file") {
		t.Fatalf("expected the warning to be printed:\n%s", out.String())
	}
	cfg.Warnings = nil

	cfg.Paddle.ClientToken = "test_abc"
	out.Reset()
	if err := printChecks(&out, cfg); err == nil {
		t.Fatalf("a sandbox token in production must fail")
	}
	if !strings.Contains(out.String(), "[FAIL] paddle client token") {
		t.Fatalf("expected the failing check to be listed:\n%s", out.String())
	}
}
