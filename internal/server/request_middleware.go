package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jacksonlee411/tree-menu/internal/routing"
	"github.com/jacksonlee411/tree-menu/modules/menu/services"
	"github.com/jacksonlee411/tree-menu/pkg/metric"
	"github.com/jacksonlee411/tree-menu/pkg/uuidv7"
)

// withRequestID echoes (or assigns) X-Request-ID before any handler writes.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuidv7.RequestID(r.Header.Get(routing.RequestIDHeader), r.Header.Get("traceparent"))
		if id != "" {
			w.Header().Set(routing.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

// withRequestPath makes the raw request path available to menu draws.
func withRequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(services.WithRequestPath(r.Context(), r.URL.Path)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func withAccessLog(classifier *routing.Classifier, logger *slog.Logger, requests metric.IncrementalCounter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		rc := classifier.Classify(r.URL.Path)
		requests.Increment(string(rc), r.Method, strconv.Itoa(rec.status))

		level := slog.LevelInfo
		switch {
		case rec.status >= 500:
			level = slog.LevelError
		case rc == routing.RouteClassOps:
			level = slog.LevelDebug
		}
		logger.Log(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route_class", string(rc)),
			slog.Int("status", rec.status),
			slog.Int("bytes", rec.bytes),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", w.Header().Get(routing.RequestIDHeader)))
	})
}
