package logger

import (
	"net/http"
	"strings"
)

// MaskEmail keeps the first character of the local part and the whole domain:
// "jane@example.com" becomes "j***@example.com".
func MaskEmail(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	at := strings.LastIndex(value, "@")
	if at <= 0 {
		return maskLast4(value)
	}
	return value[:1] + "***" + value[at:]
}

// MaskSecret masks API keys and shared secrets, preserving only the last 4 characters.
func MaskSecret(value string) string {
	return maskLast4(value)
}

// MaskHeaders returns a copy of headers with credentials and signatures masked.
func MaskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for key, values := range headers {
		joined := strings.Join(values, ",")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "authorization", "cookie", "paddle-signature":
			masked[key] = maskLast4(joined)
		default:
			masked[key] = joined
		}
	}
	return masked
}

func maskLast4(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
