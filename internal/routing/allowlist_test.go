package routing

import "testing"

func TestParseAllowlistYAML_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseAllowlistYAML([]byte{0xff})
	if err == nil {
		t.Fatal("expected yaml error")
	}

	_, err = ParseAllowlistYAML([]byte("version: 2\nentrypoints: {}"))
	if err == nil {
		t.Fatal("expected version error")
	}

	_, err = ParseAllowlistYAML([]byte("version: 1"))
	if err == nil {
		t.Fatal("expected entrypoints error")
	}

	_, err = ParseAllowlistYAML([]byte(`
version: 1
entrypoints:
  server:
    routes:
      - {name: home, path: /, methods: [GET], route_class: ui}
      - {name: home, path: /home, methods: [GET], route_class: ui}
`))
	if err == nil {
		t.Fatal("expected duplicate name error")
	}

	_, err = ParseAllowlistYAML([]byte(`
version: 1
entrypoints:
  server:
    routes:
      - {path: /, methods: [GET], route_clas: ui}
`))
	if err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestParseAllowlistYAML_Names(t *testing.T) {
	t.Parallel()

	a, err := ParseAllowlistYAML([]byte(`
version: 1
entrypoints:
  server:
    routes:
      - {name: home, path: /, methods: [GET], route_class: ui}
      - {path: /health, methods: [GET], route_class: ops}
`))
	if err != nil {
		t.Fatal(err)
	}
	routes := a.Entrypoints["server"].Routes
	if len(routes) != 2 || routes[0].Name != "home" || routes[1].Name != "" {
		t.Fatalf("routes=%+v", routes)
	}
}

func TestLoadAllowlist_RepoFile(t *testing.T) {
	t.Parallel()

	a, err := LoadAllowlist(repoRoot(t) + "/config/routing/allowlist.yaml")
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClassifier(a, "server")
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Reverse("home"); !ok || got != "/" {
		t.Fatalf("home=%q ok=%v", got, ok)
	}
	if _, ok := c.Reverse("page"); ok {
		t.Fatal("parameterized route must not reverse")
	}
	for _, ep := range a.Entrypoints {
		for _, r := range ep.Routes {
			if isModuleInternalAPI(r.Path) && r.RouteClass != string(RouteClassInternalAPI) {
				t.Fatalf("api route %s has class %q", r.Path, r.RouteClass)
			}
		}
	}
}
