// Package uuidv7 issues time-ordered request ids.
package uuidv7

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a UUIDv7 (RFC 9562): millisecond timestamp first, so ids sort
// by creation time.
func New() (uuid.UUID, error) {
	return uuid.NewV7()
}

func NewString() (string, error) {
	u, err := New()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// RequestID picks the id for an incoming request: a well-formed inbound id
// is kept, then the trace id of a W3C traceparent header, then a fresh UUIDv7.
// It returns "" only when the random source fails.
func RequestID(inbound string, traceparent string) string {
	if id, ok := cleanInbound(inbound); ok {
		return id
	}
	if id, ok := TraceIDFromTraceparent(traceparent); ok {
		return id
	}
	id, err := NewString()
	if err != nil {
		return ""
	}
	return id
}

func cleanInbound(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > 128 {
		return "", false
	}
	for _, r := range v {
		if r < 0x21 || r > 0x7e {
			return "", false
		}
	}
	return v, true
}

// TraceIDFromTraceparent extracts the 32-hex trace id from
// "00-<trace-id>-<parent-id>-<flags>". An all-zero trace id is invalid.
func TraceIDFromTraceparent(h string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(h), "-")
	if len(parts) != 4 || len(parts[0]) != 2 || len(parts[1]) != 32 {
		return "", false
	}
	traceID := strings.ToLower(parts[1])
	if strings.Trim(traceID, "0") == "" || strings.Trim(traceID, "0123456789abcdef") != "" {
		return "", false
	}
	return traceID, true
}
