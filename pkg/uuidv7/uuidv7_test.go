package uuidv7

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestNew(t *testing.T) {
	u, err := New()
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if u.Version() != 7 {
		t.Fatalf("expected version 7, got %d", u.Version())
	}
	if u.Variant() != uuid.RFC4122 {
		t.Fatalf("expected RFC4122 variant, got %v", u.Variant())
	}
}

func TestNewString(t *testing.T) {
	got, err := NewString()
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if got == "" {
		t.Fatal("expected non-empty string")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected parseable uuid, got %v", err)
	}
}

func failRandom(t *testing.T) {
	t.Helper()
	uuid.SetRand(errReader{})
	t.Cleanup(func() { uuid.SetRand(nil) })
}

func TestNew_Ordered(t *testing.T) {
	a, err := NewString()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewString()
	if err != nil {
		t.Fatal(err)
	}
	if a >= b {
		t.Fatalf("expected %s < %s", a, b)
	}
}

func TestNewReadError(t *testing.T) {
	failRandom(t)
	if _, err := New(); err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewString(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRequestID(t *testing.T) {
	if got := RequestID(" req-1 ", ""); got != "req-1" {
		t.Fatalf("got=%q", got)
	}

	tp := "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01"
	if got := RequestID("", tp); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("got=%q", got)
	}
	if got := RequestID("has space", tp); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("got=%q", got)
	}

	got := RequestID("", "")
	u, err := uuid.Parse(got)
	if err != nil || u.Version() != 7 {
		t.Fatalf("got=%q err=%v", got, err)
	}
}

func TestRequestIDReadError(t *testing.T) {
	failRandom(t)
	if got := RequestID("", ""); got != "" {
		t.Fatalf("got=%q", got)
	}
}

func TestTraceIDFromTraceparent(t *testing.T) {
	for _, h := range []string{
		"",
		"00-abc-def-01",
		"00-00000000000000000000000000000000-00f067aa0ba902b7-01",
		"00-zzf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
		"0-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	} {
		if _, ok := TraceIDFromTraceparent(h); ok {
			t.Fatalf("expected %q to be rejected", h)
		}
	}
}
