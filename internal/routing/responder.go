package routing

import (
	"encoding/json"
	"html/template"
	"mime"
	"net/http"
	"strings"

	"github.com/jacksonlee411/tree-menu/pkg/uuidv7"
)

// ErrorEnvelope is the JSON error body of every route class.
type ErrorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	TraceID string            `json:"trace_id"`
	Meta    ErrorEnvelopeMeta `json:"meta"`
}

type ErrorEnvelopeMeta struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Field  string `json:"field,omitempty"`
}

// RequestIDHeader is set on every response by the server middleware and used
// as the trace id when the caller sent no traceparent.
const RequestIDHeader = "X-Request-ID"

func WriteError(w http.ResponseWriter, r *http.Request, rc RouteClass, status int, code string, message string) {
	WriteFieldError(w, r, rc, status, code, "", message)
}

// WriteFieldError is WriteError for validation failures tied to one input.
// Internal API routes always answer JSON; other classes answer JSON only when
// the client asks for it.
func WriteFieldError(w http.ResponseWriter, r *http.Request, rc RouteClass, status int, code string, field string, message string) {
	env := ErrorEnvelope{
		Code:    code,
		Message: normalizeErrorMessage(code, message),
		TraceID: TraceIDFromRequest(r),
		Meta:    ErrorEnvelopeMeta{Path: r.URL.Path, Method: r.Method, Field: field},
	}
	if env.TraceID == "" {
		env.TraceID = w.Header().Get(RequestIDHeader)
	}

	if rc == RouteClassInternalAPI || acceptsJSON(r) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(env)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorPage.Execute(w, env)
}

var errorPage = template.Must(template.New("error").Parse(
	`<!doctype html><html><head><meta charset="utf-8"><title>{{.Message}}</title></head>` +
		`<body><p>{{.Message}}</p>{{with .TraceID}}<p><small>trace {{.}}</small></p>{{end}}</body></html>`))

func acceptsJSON(r *http.Request) bool {
	first, _, _ := strings.Cut(r.Header.Get("Accept"), ",")
	if strings.TrimSpace(first) == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(first)
	return err == nil && mt == "application/json"
}

// TraceIDFromRequest returns the W3C trace id of r, or "" without a valid
// traceparent header.
func TraceIDFromRequest(r *http.Request) string {
	id, _ := uuidv7.TraceIDFromTraceparent(r.Header.Get("traceparent"))
	return id
}

// knownErrorMessages replaces terse messages for codes users see often.
var knownErrorMessages = map[string]string{
	"menu_not_found":       "Menu not found.",
	"menu_item_not_found":  "Menu item not found.",
	"menu_exists":          "A menu with this name already exists.",
	"request_path_missing": "The menu can only be drawn while serving a request.",
	"unauthorized":         "Authentication required.",
	"forbidden":            "You are not allowed to perform this action.",
	"invalid_request":      "Invalid request, please check the input and retry.",
}

func normalizeErrorMessage(code string, message string) string {
	message = strings.TrimSpace(message)
	if !isGenericErrorMessage(code, message) {
		return message
	}
	if known, ok := knownErrorMessages[strings.TrimSpace(code)]; ok {
		return known
	}
	return humanizeErrorCode(code)
}

// isGenericErrorMessage reports whether message carries no more than code does.
func isGenericErrorMessage(code string, message string) bool {
	switch {
	case message == "":
		return true
	case strings.EqualFold(message, strings.TrimSpace(code)):
		return true
	default:
		return strings.Contains(message, "_") && !strings.Contains(message, " ")
	}
}

// humanizeErrorCode turns "menu_draw_failed" into "Menu draw failed.".
func humanizeErrorCode(code string) string {
	words := strings.FieldsFunc(strings.ToLower(code), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	switch {
	case len(words) == 0:
		return "Request failed."
	case len(words) == 1 && (words[0] == "failed" || words[0] == "error"):
		return "Request " + words[0] + "."
	}
	for i, w := range words {
		switch {
		case isAcronym(w):
			words[i] = strings.ToUpper(w)
		case i == 0:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ") + "."
}

func isAcronym(w string) bool {
	switch w {
	case "api", "id", "url", "db", "uuid", "json":
		return true
	}
	return false
}
