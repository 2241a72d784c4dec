package routing

import "testing"

func serverAllowlist() Allowlist {
	return Allowlist{
		Version: 1,
		Entrypoints: map[string]Entrypoint{
			"server": {Routes: []Route{
				{Name: "home", Path: "/", Methods: []string{"GET"}, RouteClass: "ui"},
				{Name: "catalog", Path: "/catalog/", Methods: []string{"GET"}, RouteClass: "ui"},
				{Name: "page", Path: "/pages/{slug}", Methods: []string{"GET"}, RouteClass: "ui"},
				{Path: "/health", Methods: []string{"GET"}, RouteClass: "ops"},
			}},
		},
	}
}

func TestClassifier_SegmentBoundary(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(serverAllowlist(), "server")
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Classify("/menu/api"); got != RouteClassInternalAPI {
		t.Fatalf("got=%q", got)
	}
	if got := c.Classify("/menu/api/menus"); got != RouteClassInternalAPI {
		t.Fatalf("got=%q", got)
	}
	if got := c.Classify("/menu/apix"); got == RouteClassInternalAPI {
		t.Fatalf("unexpected internal api: %q", got)
	}
	if got := c.Classify("menu/api"); got != RouteClassUI {
		t.Fatalf("got=%q", got)
	}
	if got := c.Classify("/"); got != RouteClassUI {
		t.Fatalf("got=%q", got)
	}
}

func TestNewClassifier_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewClassifier(Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{}}, "server"); err == nil {
		t.Fatal("expected missing entrypoint error")
	}
	if _, err := NewClassifier(Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{"server": {Routes: nil}}}, "server"); err == nil {
		t.Fatal("expected empty routes error")
	}
	if _, err := NewClassifier(Allowlist{Version: 1, Entrypoints: map[string]Entrypoint{"server": {Routes: []Route{{}}}}}, "server"); err == nil {
		t.Fatal("expected invalid route error")
	}
}

func TestClassifier_AllClasses(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(serverAllowlist(), "server")
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]RouteClass{
		"/health":         RouteClassOps,
		"/pages/about-us": RouteClassUI,
		"/assets/x":       RouteClassUI,
		"/anything-else":  RouteClassUI,
	}
	for path, want := range cases {
		if got := c.Classify(path); got != want {
			t.Fatalf("path=%s got=%q want=%q", path, got, want)
		}
	}
}

func TestClassifier_Reverse(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(serverAllowlist(), "server")
	if err != nil {
		t.Fatal(err)
	}

	if got, ok := c.Reverse("catalog"); !ok || got != "/catalog/" {
		t.Fatalf("got=%q ok=%v", got, ok)
	}
	if got, ok := c.Reverse(" home "); !ok || got != "/" {
		t.Fatalf("got=%q ok=%v", got, ok)
	}
	if _, ok := c.Reverse("page"); ok {
		t.Fatal("pattern route reversed")
	}
	if _, ok := c.Reverse("missing"); ok {
		t.Fatal("unknown name reversed")
	}

	var nilClassifier *Classifier
	if _, ok := nilClassifier.Reverse("home"); ok {
		t.Fatal("nil classifier reversed")
	}

	names := c.Names()
	names["home"] = "/changed"
	if got, _ := c.Reverse("home"); got != "/" {
		t.Fatalf("Names leaked internal map: %q", got)
	}
}
