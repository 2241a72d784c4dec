package routing

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
)

// Router dispatches on exact paths first, then on {param} patterns in
// registration order. Unknown paths and methods answer with the error
// envelope of the path's route class.
type Router struct {
	classifier *Classifier
	logger     *slog.Logger
	exact      map[string]methodSet
	patterns   []patternRoute
}

// methodSet maps an HTTP method to its wrapped handler.
type methodSet map[string]routeEntry

type routeEntry struct {
	rc      RouteClass
	handler http.Handler
}

type patternRoute struct {
	pattern PathPattern
	methods methodSet
}

type RouterOption func(*Router)

// WithPanicLogger receives recovered handler panics.
func WithPanicLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRouter(classifier *Classifier, opts ...RouterOption) *Router {
	r := &Router{
		classifier: classifier,
		logger:     slog.Default(),
		exact:      make(map[string]methodSet),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers h for method on path. Paths with {param} segments are
// matched after exact paths and expose their values through Request.PathValue.
func (r *Router) Handle(rc RouteClass, method string, path string, h http.Handler) {
	entry := routeEntry{rc: rc, handler: r.recoverer(rc, h)}

	p, isPattern := parsePathPattern(path)
	if !isPattern {
		if r.exact[path] == nil {
			r.exact[path] = methodSet{}
		}
		r.exact[path][method] = entry
		return
	}
	for _, pr := range r.patterns {
		if pr.pattern.raw == p.raw {
			pr.methods[method] = entry
			return
		}
	}
	r.patterns = append(r.patterns, patternRoute{pattern: p, methods: methodSet{method: entry}})
}

func (r *Router) recoverer(rc RouteClass, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			r.logger.ErrorContext(req.Context(), "handler panic",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())))
			WriteError(w, req, rc, http.StatusInternalServerError, "internal_error", "internal error")
		}()
		h.ServeHTTP(w, req)
	})
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	methods := r.lookup(req)
	if methods == nil {
		WriteError(w, req, r.classifier.Classify(req.URL.Path), http.StatusNotFound, "not_found", "not found")
		return
	}
	entry, ok := methods[req.Method]
	if !ok {
		w.Header().Set("Allow", methods.allow())
		WriteError(w, req, methods.class(r.classifier.Classify(req.URL.Path)), http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	entry.handler.ServeHTTP(w, req)
}

// lookup finds the method set for the request path and binds pattern params.
func (r *Router) lookup(req *http.Request) methodSet {
	if m, ok := r.exact[req.URL.Path]; ok {
		return m
	}
	for _, pr := range r.patterns {
		params, ok := pr.pattern.Bind(req.URL.Path)
		if !ok {
			continue
		}
		for k, v := range params {
			req.SetPathValue(k, v)
		}
		return pr.methods
	}
	return nil
}

func (m methodSet) allow() string {
	return strings.Join(slices.Sorted(maps.Keys(m)), ", ")
}

// class is the route class the path was registered with, or fallback for an
// empty set.
func (m methodSet) class(fallback RouteClass) RouteClass {
	for _, e := range m {
		return e.rc
	}
	return fallback
}
