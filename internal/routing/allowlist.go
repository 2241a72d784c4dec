package routing

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Allowlist is config/routing/allowlist.yaml: every routable path per
// entrypoint, with its methods and route class.
type Allowlist struct {
	Version     int                   `yaml:"version"`
	Entrypoints map[string]Entrypoint `yaml:"entrypoints"`
}

type Entrypoint struct {
	Routes []Route `yaml:"routes"`
}

// Route is one allowlisted path. Name is optional; named exact paths can be
// reversed by menu items that reference a route instead of a literal URL.
type Route struct {
	Name       string   `yaml:"name"`
	Path       string   `yaml:"path"`
	Methods    []string `yaml:"methods"`
	RouteClass string   `yaml:"route_class"`
}

// ParseAllowlistYAML decodes strictly; unknown keys are typos, not extensions.
func ParseAllowlistYAML(b []byte) (Allowlist, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var a Allowlist
	if err := dec.Decode(&a); err != nil {
		return Allowlist{}, fmt.Errorf("allowlist: %w", err)
	}
	if err := a.validate(); err != nil {
		return Allowlist{}, err
	}
	return a, nil
}

func (a Allowlist) validate() error {
	if a.Version != 1 {
		return fmt.Errorf("allowlist: unsupported version %d", a.Version)
	}
	if len(a.Entrypoints) == 0 {
		return errors.New("allowlist: missing entrypoints")
	}
	for ep, e := range a.Entrypoints {
		byName := make(map[string]string, len(e.Routes))
		for _, r := range e.Routes {
			name := strings.TrimSpace(r.Name)
			if name == "" {
				continue
			}
			if prev, dup := byName[name]; dup {
				return fmt.Errorf("allowlist: %s: route name %q used by %s and %s", ep, name, prev, r.Path)
			}
			byName[name] = r.Path
		}
	}
	return nil
}

func LoadAllowlist(path string) (Allowlist, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Allowlist{}, err
	}
	return ParseAllowlistYAML(b)
}
