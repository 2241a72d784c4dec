package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jacksonlee411/tree-menu/internal/routing"
	"github.com/jacksonlee411/tree-menu/modules/menu/services"
	"github.com/jacksonlee411/tree-menu/pkg/logging"
)

func TestWithRequestID(t *testing.T) {
	h := withRequestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(routing.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(routing.RequestIDHeader); got != "abc-123" {
		t.Fatalf("got=%q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(routing.RequestIDHeader); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("got=%q", got)
	}
}

func TestWithRequestPath(t *testing.T) {
	var got string
	var ok bool
	h := withRequestPath(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = services.RequestPathFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pages/books/?x=1", nil))
	if !ok || got != "/pages/books/" {
		t.Fatalf("got=%q ok=%v", got, ok)
	}
}

func TestWithAccessLog_DefaultsStatusAndCounts(t *testing.T) {
	counter := &labelCounter{}
	h := withAccessLog(mustTestClassifier(t), logging.Discard(), counter, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hi"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || len(counter.got) != 1 || counter.got[0] != "ops/GET/200" {
		t.Fatalf("status=%d counter=%v", rec.Code, counter.got)
	}

	h = withAccessLog(mustTestClassifier(t), logging.Discard(), counter, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))
	if counter.got[1] != "ui/POST/200" {
		t.Fatalf("counter=%v", counter.got)
	}
}

type labelCounter struct{ got []string }

func (c *labelCounter) Increment(val ...string) { c.got = append(c.got, strings.Join(val, "/")) }
