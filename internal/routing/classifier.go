package routing

import (
	"fmt"
	"maps"
	"strings"
)

// RouteClass picks the error envelope and access-log bucket of a request.
type RouteClass string

const (
	RouteClassUI          RouteClass = "ui"
	RouteClassInternalAPI RouteClass = "internal_api"
	RouteClassOps         RouteClass = "ops"
)

// Classifier maps request paths to route classes and resolves route names
// back to paths for menu items that reference a named route.
type Classifier struct {
	exact    map[string]RouteClass
	patterns []classifiedPattern
	reverse  map[string]string
}

type classifiedPattern struct {
	pattern PathPattern
	class   RouteClass
}

// NewClassifier indexes one entrypoint of the allowlist.
func NewClassifier(a Allowlist, entrypoint string) (*Classifier, error) {
	ep, ok := a.Entrypoints[entrypoint]
	if !ok {
		return nil, fmt.Errorf("allowlist: missing entrypoint %q", entrypoint)
	}
	if len(ep.Routes) == 0 {
		return nil, fmt.Errorf("allowlist: entrypoint %q has no routes", entrypoint)
	}

	c := &Classifier{
		exact:   make(map[string]RouteClass, len(ep.Routes)),
		reverse: make(map[string]string),
	}
	for i, r := range ep.Routes {
		if r.Path == "" || r.RouteClass == "" {
			return nil, fmt.Errorf("allowlist: %s route #%d needs path and route_class", entrypoint, i)
		}
		class := RouteClass(r.RouteClass)
		if p, isPattern := parsePathPattern(r.Path); isPattern {
			c.patterns = append(c.patterns, classifiedPattern{pattern: p, class: class})
			continue
		}
		c.exact[r.Path] = class
		if name := strings.TrimSpace(r.Name); name != "" {
			c.reverse[name] = r.Path
		}
	}
	return c, nil
}

// Classify checks exact routes, then patterns, then falls back on the path
// shape: /{module}/api/... is internal API, everything else UI.
func (c *Classifier) Classify(path string) RouteClass {
	if class, ok := c.exact[path]; ok {
		return class
	}
	for _, p := range c.patterns {
		if p.pattern.Match(path) {
			return p.class
		}
	}
	if isModuleInternalAPI(path) {
		return RouteClassInternalAPI
	}
	return RouteClassUI
}

// Reverse returns the path of a named exact route. Parameterized routes have
// no single path and never reverse.
func (c *Classifier) Reverse(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	p, ok := c.reverse[strings.TrimSpace(name)]
	return p, ok
}

// Names returns a copy of the reversible route table.
func (c *Classifier) Names() map[string]string {
	return maps.Clone(c.reverse)
}

// isModuleInternalAPI matches /{module}/api and anything below it; the module
// is exactly one segment.
func isModuleInternalAPI(path string) bool {
	rest, ok := strings.CutPrefix(path, "/")
	if !ok {
		return false
	}
	module, after, ok := strings.Cut(rest, "/")
	if !ok || module == "" {
		return false
	}
	return after == "api" || strings.HasPrefix(after, "api/")
}
