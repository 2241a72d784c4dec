package authz

import (
	"os"
	"path/filepath"
	"testing"
)

const testModel = `
[request_definition]
r = sub, dom, obj, act
[policy_definition]
p = sub, dom, obj, act
[policy_effect]
e = some(where (p.eft == allow))
[matchers]
m = r.sub == p.sub && r.dom == p.dom && r.obj == p.obj && r.act == p.act
`

func writeFile(t *testing.T, dir string, name string, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func repoConfig(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("..", "..", "config", "access", name)
}

func TestModeFromEnv(t *testing.T) {
	t.Setenv("AUTHZ_MODE", "")
	if m, err := ModeFromEnv(); err != nil || m != ModeEnforce {
		t.Fatalf("mode=%q err=%v", m, err)
	}

	t.Setenv("AUTHZ_MODE", " Shadow ")
	if m, err := ModeFromEnv(); err != nil || m != ModeShadow {
		t.Fatalf("mode=%q err=%v", m, err)
	}

	t.Setenv("AUTHZ_MODE", "disabled")
	t.Setenv("AUTHZ_UNSAFE_ALLOW_DISABLED", "")
	if _, err := ModeFromEnv(); err == nil {
		t.Fatal("expected error")
	}
	t.Setenv("AUTHZ_UNSAFE_ALLOW_DISABLED", "1")
	if m, err := ModeFromEnv(); err != nil || m != ModeDisabled {
		t.Fatalf("mode=%q err=%v", m, err)
	}

	t.Setenv("AUTHZ_MODE", "nope")
	if _, err := ModeFromEnv(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRepoPolicy(t *testing.T) {
	a, err := NewAuthorizer(repoConfig(t, "model.conf"), repoConfig(t, "policy.csv"), ModeEnforce)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if a.Mode() != ModeEnforce {
		t.Fatalf("mode=%q", a.Mode())
	}

	cases := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{role: RoleMenuAdmin, object: ObjectMenuMenus, action: ActionAdmin, want: true},
		{role: RoleMenuAdmin, object: ObjectMenuItems, action: ActionAdmin, want: true},
		{role: RoleMenuViewer, object: ObjectMenuItems, action: ActionRead, want: true},
		{role: RoleMenuViewer, object: ObjectMenuItems, action: ActionAdmin, want: false},
		{role: RoleAnonymous, object: ObjectMenuTree, action: ActionRead, want: true},
		{role: RoleAnonymous, object: ObjectMenuMenus, action: ActionRead, want: false},
		{role: "", object: ObjectMenuItems, action: ActionAdmin, want: false},
	}
	for _, tc := range cases {
		d, err := a.Authorize(RoleRequest(tc.role, tc.object, tc.action))
		if err != nil {
			t.Fatalf("err=%v", err)
		}
		if !d.Enforced || d.Allowed != tc.want || d.Denied() == tc.want {
			t.Fatalf("%s %s %s: %+v", tc.role, tc.object, tc.action, d)
		}
	}
}

func TestAuthorize_Modes(t *testing.T) {
	dir := t.TempDir()
	model := writeFile(t, dir, "model.conf", testModel)
	policy := writeFile(t, dir, "policy.csv", "p, role:menu-viewer, global, menu.items, read\n")

	aShadow, err := NewAuthorizer(model, policy, ModeShadow)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	d, err := aShadow.Authorize(RoleRequest(RoleMenuViewer, ObjectMenuItems, ActionAdmin))
	if err != nil || d.Enforced || d.Allowed || d.Denied() {
		t.Fatalf("d=%+v err=%v", d, err)
	}

	aDisabled, err := NewAuthorizer(model, policy, ModeDisabled)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	d, err = aDisabled.Authorize(RoleRequest(RoleMenuViewer, ObjectMenuItems, ActionAdmin))
	if err != nil || d.Enforced || !d.Allowed {
		t.Fatalf("d=%+v err=%v", d, err)
	}

	a := &Authorizer{mode: Mode("nope")}
	if _, err := a.Authorize(Request{Subject: "role:x", Domain: "d", Object: "o", Action: "a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewAuthorizer_Errors(t *testing.T) {
	dir := t.TempDir()
	invalidModel := writeFile(t, dir, "invalid.conf", "nope")
	if _, err := NewAuthorizer(invalidModel, "nope-policy.csv", ModeEnforce); err == nil {
		t.Fatal("expected model error")
	}

	model := writeFile(t, dir, "model.conf", testModel)
	if _, err := NewAuthorizer(model, filepath.Join(dir, "missing-policy.csv"), ModeEnforce); err == nil {
		t.Fatal("expected policy error")
	}
	policyDir := filepath.Join(dir, "policy-dir")
	if err := os.MkdirAll(policyDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := NewAuthorizer(model, policyDir, ModeEnforce); err == nil {
		t.Fatal("expected policy dir error")
	}
}

func TestAuthorize_EnforceError(t *testing.T) {
	dir := t.TempDir()
	model := writeFile(t, dir, "model.conf", `
[request_definition]
r = sub, dom, obj, act
[policy_definition]
p = sub, dom, obj, act
[policy_effect]
e = some(where (p.eft == allow))
[matchers]
m = r.sub == 
`)
	policy := writeFile(t, dir, "policy.csv", "p, role:menu-admin, global, menu.items, read\n")

	aShadow, err := NewAuthorizer(model, policy, ModeShadow)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	d, err := aShadow.Authorize(RoleRequest(RoleMenuAdmin, ObjectMenuItems, ActionRead))
	if err == nil || d.Allowed || d.Enforced {
		t.Fatalf("d=%+v err=%v", d, err)
	}

	aEnforce, err := NewAuthorizer(model, policy, ModeEnforce)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	d, err = aEnforce.Authorize(RoleRequest(RoleMenuAdmin, ObjectMenuItems, ActionRead))
	if err == nil || d.Allowed || !d.Enforced {
		t.Fatalf("d=%+v err=%v", d, err)
	}
}

func TestSubjectFromRoleSlug(t *testing.T) {
	if got := SubjectFromRoleSlug(""); got != "role:anonymous" {
		t.Fatalf("got=%q", got)
	}
	if got := SubjectFromRoleSlug(" Menu-Admin "); got != "role:menu-admin" {
		t.Fatalf("got=%q", got)
	}
	r := RoleRequest("", ObjectMenuTree, ActionRead)
	if r.Subject != "role:anonymous" || r.Domain != DomainGlobal {
		t.Fatalf("r=%+v", r)
	}
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode("disabled", false); err == nil {
		t.Fatal("expected error")
	}
	if m, err := ParseMode(" DISABLED", true); err != nil || m != ModeDisabled {
		t.Fatalf("m=%q err=%v", m, err)
	}
}
