package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/jacksonlee411/tree-menu/internal/routing"
	"github.com/jacksonlee411/tree-menu/pkg/authz"
)

// loadAuthorizer reads the casbin model and policy named by AUTHZ_MODEL_PATH
// and AUTHZ_POLICY_PATH, falling back to config/access/.
func loadAuthorizer() (*authz.Authorizer, error) {
	mode, err := authz.ModeFromEnv()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 2)
	for i, f := range []struct{ env, rel string }{
		{"AUTHZ_MODEL_PATH", "config/access/model.conf"},
		{"AUTHZ_POLICY_PATH", "config/access/policy.csv"},
	} {
		if paths[i] = os.Getenv(f.env); paths[i] != "" {
			continue
		}
		if paths[i], err = findConfigFile(f.rel); err != nil {
			return nil, err
		}
	}
	return authz.NewAuthorizer(paths[0], paths[1], mode)
}

// findConfigFile looks for a repo-relative path from the working directory
// upwards, so binaries and tests find config/ without extra env.
func findConfigFile(rel string) (string, error) {
	path := rel
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", fmt.Errorf("server: %s not found", rel)
}

type authorizer interface {
	Authorize(req authz.Request) (authz.Decision, error)
}

// authzRule guards one API route: reads need ActionRead, the listed write
// methods need ActionAdmin.
type authzRule struct {
	route  string
	object string
	writes []string
}

var authzRules = []authzRule{
	{route: "/menu/api/menus", object: authz.ObjectMenuMenus, writes: []string{http.MethodPost}},
	{route: "/menu/api/menus/{menu}/items", object: authz.ObjectMenuItems, writes: []string{http.MethodPost}},
	{route: "/menu/api/menus/{menu}/tree", object: authz.ObjectMenuTree},
	{route: "/menu/api/items/{id}", object: authz.ObjectMenuItems, writes: []string{http.MethodPut, http.MethodDelete}},
}

// authzRequirementForRoute returns what a request must be allowed to do.
// Routes without a rule, and methods a rule does not name, are not checked;
// the router answers those with 404 or 405.
func authzRequirementForRoute(method string, path string) (object string, action string, ok bool) {
	for _, rule := range authzRules {
		if !routing.MatchPath(rule.route, path) {
			continue
		}
		switch {
		case method == http.MethodGet || method == http.MethodHead:
			return rule.object, authz.ActionRead, true
		case slices.Contains(rule.writes, method):
			return rule.object, authz.ActionAdmin, true
		}
		return "", "", false
	}
	return "", "", false
}

func withAuthz(classifier *routing.Classifier, a authorizer, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		object, action, check := authzRequirementForRoute(r.Method, r.URL.Path)
		if !check {
			next.ServeHTTP(w, r)
			return
		}

		p, ok := currentPrincipal(r.Context())
		if !ok {
			p = anonymousPrincipal()
		}
		req := authz.RoleRequest(p.RoleSlug, object, action)
		rc := classifier.Classify(r.URL.Path)

		d, err := a.Authorize(req)
		if err != nil {
			logger.ErrorContext(r.Context(), "authz error", slog.String("error", err.Error()))
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "authz_error", "authz error")
			return
		}
		if !d.Allowed {
			logger.InfoContext(r.Context(), "authz denied",
				slog.String("subject", req.Subject),
				slog.String("object", req.Object),
				slog.String("action", req.Action),
				slog.Bool("enforced", d.Enforced))
		}
		switch {
		case !d.Denied():
			next.ServeHTTP(w, r)
		case p.anonymous():
			w.Header().Set("WWW-Authenticate", basicRealm)
			routing.WriteError(w, r, rc, http.StatusUnauthorized, "unauthorized", "unauthorized")
		default:
			routing.WriteError(w, r, rc, http.StatusForbidden, "forbidden", "forbidden")
		}
	})
}
