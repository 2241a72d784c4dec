// Package authz guards the menu admin API with a casbin RBAC policy.
package authz

import (
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

func ModeFromEnv() (Mode, error) {
	return ParseMode(os.Getenv("AUTHZ_MODE"), os.Getenv("AUTHZ_UNSAFE_ALLOW_DISABLED") == "1")
}

// ParseMode defaults to enforce. Turning checks off needs allowDisabled as well.
func ParseMode(raw string, allowDisabled bool) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case "":
		return ModeEnforce, nil
	case ModeEnforce, ModeShadow:
		return m, nil
	case ModeDisabled:
		if allowDisabled {
			return m, nil
		}
		return "", fmt.Errorf("authz: AUTHZ_MODE=%s requires AUTHZ_UNSAFE_ALLOW_DISABLED=1", m)
	}
	return "", fmt.Errorf("authz: invalid AUTHZ_MODE %q (expected enforce|shadow|disabled)", raw)
}

// Request is one (subject, domain, object, action) tuple as the model expects it.
type Request struct {
	Subject string
	Domain  string
	Object  string
	Action  string
}

// RoleRequest builds a global-domain request for a role slug.
func RoleRequest(roleSlug, object, action string) Request {
	return Request{Subject: SubjectFromRoleSlug(roleSlug), Domain: DomainGlobal, Object: object, Action: action}
}

// Decision is the outcome of a check. Outside enforce mode a denial is only
// reported, never applied.
type Decision struct {
	Allowed  bool
	Enforced bool
}

func (d Decision) Denied() bool { return d.Enforced && !d.Allowed }

type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
}

// NewAuthorizer loads a casbin model file and a CSV policy file.
func NewAuthorizer(modelPath string, policyPath string, mode Mode) (*Authorizer, error) {
	e, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("authz: model %s: %w", modelPath, err)
	}
	e.SetAdapter(fileadapter.NewAdapter(policyPath))
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: policy %s: %w", policyPath, err)
	}
	return &Authorizer{enforcer: e, mode: mode}, nil
}

func (a *Authorizer) Mode() Mode { return a.mode }

func SubjectFromRoleSlug(roleSlug string) string {
	roleSlug = strings.ToLower(strings.TrimSpace(roleSlug))
	if roleSlug == "" {
		return "role:" + RoleAnonymous
	}
	return "role:" + roleSlug
}

func (a *Authorizer) Authorize(req Request) (Decision, error) {
	if a.mode == ModeDisabled {
		return Decision{Allowed: true}, nil
	}
	if a.mode != ModeEnforce && a.mode != ModeShadow {
		return Decision{}, fmt.Errorf("authz: unknown mode %q", a.mode)
	}
	enforced := a.mode == ModeEnforce
	ok, err := a.enforcer.Enforce(req.Subject, req.Domain, req.Object, req.Action)
	if err != nil {
		return Decision{Enforced: enforced}, err
	}
	return Decision{Allowed: ok, Enforced: enforced}, nil
}
