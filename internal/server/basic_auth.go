package server

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/jacksonlee411/tree-menu/internal/routing"
	"github.com/jacksonlee411/tree-menu/pkg/authz"
)

// Principal is the caller as seen by the authz middleware.
type Principal struct {
	Name     string
	RoleSlug string
}

func anonymousPrincipal() Principal {
	return Principal{Name: authz.RoleAnonymous, RoleSlug: authz.RoleAnonymous}
}

func (p Principal) anonymous() bool { return p.RoleSlug == authz.RoleAnonymous }

type principalKey struct{}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func currentPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

const basicRealm = `Basic realm="tree-menu"`

type adminCredentials struct {
	User string
	Pass string
}

func (c adminCredentials) configured() bool { return c.User != "" && c.Pass != "" }

func (c adminCredentials) match(user, pass string) bool {
	u := subtle.ConstantTimeCompare([]byte(user), []byte(c.User))
	p := subtle.ConstantTimeCompare([]byte(pass), []byte(c.Pass))
	return u&p == 1
}

// withBasicAuth attaches the principal. Requests without credentials are
// anonymous; wrong credentials are rejected outright.
func withBasicAuth(classifier *routing.Classifier, creds adminCredentials, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := anonymousPrincipal()

		if user, pass, ok := r.BasicAuth(); ok {
			if !creds.configured() || !creds.match(user, pass) {
				w.Header().Set("WWW-Authenticate", basicRealm)
				routing.WriteError(w, r, classifier.Classify(r.URL.Path), http.StatusUnauthorized, "unauthorized", "unauthorized")
				return
			}
			p = Principal{Name: user, RoleSlug: authz.RoleMenuAdmin}
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}
