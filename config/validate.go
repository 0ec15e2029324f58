package config

import (
	"fmt"
	"strings"
)

// Check is one line of the configuration report printed by verify-config.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Validate inspects the loaded configuration and reports what a deployment
// would trip over. Prefix rules follow the provider's key formats: live_
// client tokens belong to production, test_ tokens to sandbox.
func (c *Config) Validate() []Check {
	production := c.Paddle.Environment == "production"

	checks := []Check{
		{
			Name:   "paddle environment",
			OK:     c.Paddle.Environment == "production" || c.Paddle.Environment == "sandbox",
			Detail: c.Paddle.Environment,
		},
		clientTokenCheck(c.Paddle.ClientToken, production),
		{
			Name:   "paddle price id",
			OK:     strings.HasPrefix(c.Paddle.PriceID, "pri_"),
			Detail: valueOrMissing(c.Paddle.PriceID),
		},
		presence("paddle api key", c.Paddle.APIKey),
		presence("paddle webhook secret", c.Paddle.WebhookSecret),
		presence("resend api key", c.Mail.APIKey),
		{
			Name:   "sales notification address",
			OK:     strings.Contains(c.Mail.SalesAddress, "@"),
			Detail: valueOrMissing(c.Mail.SalesAddress),
		},
		{
			Name:   "public domain",
			OK:     !production || !strings.Contains(c.Server.PublicDomain, "localhost"),
			Detail: c.Server.PublicDomain,
		},
	}
	return checks
}

// Healthy reports whether every check passed.
func Healthy(checks []Check) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return true
}

func clientTokenCheck(token string, production bool) Check {
	want := "test_"
	if production {
		want = "live_"
	}
	detail := "missing"
	if token != "" {
		detail = fmt.Sprintf("%s... (expected %s...)", prefix(token, 5), want)
	}
	return Check{Name: "paddle client token", OK: strings.HasPrefix(token, want), Detail: detail}
}

func presence(name, value string) Check {
	if value == "" {
		return Check{Name: name, OK: false, Detail: "missing"}
	}
	return Check{Name: name, OK: true, Detail: "set"}
}

func valueOrMissing(v string) string {
	if v == "" {
		return "missing"
	}
	return v
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
