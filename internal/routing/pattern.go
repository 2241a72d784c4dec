package routing

import "strings"

// PathPattern is an allowlist path with {param} segments, e.g. /pages/{slug}.
type PathPattern struct {
	raw   string
	parts []patternPart
}

// patternPart is either a literal segment or a named parameter.
type patternPart struct {
	literal string
	param   string
}

// parsePathPattern accepts only absolute paths with at least one well-formed
// {param} segment; plain paths are exact routes, not patterns.
func parsePathPattern(raw string) (PathPattern, bool) {
	if !strings.HasPrefix(raw, "/") || !strings.Contains(raw, "{") {
		return PathPattern{}, false
	}
	segs := splitPathSegments(raw)
	parts := make([]patternPart, 0, len(segs))
	for _, s := range segs {
		switch {
		case s == "":
			return PathPattern{}, false
		case isParamSegment(s):
			parts = append(parts, patternPart{param: s[1 : len(s)-1]})
		case strings.ContainsAny(s, "{}"):
			return PathPattern{}, false
		default:
			parts = append(parts, patternPart{literal: s})
		}
	}
	return PathPattern{raw: raw, parts: parts}, true
}

func (p PathPattern) Match(path string) bool {
	_, ok := p.Bind(path)
	return ok
}

// Bind matches path (one trailing slash tolerated) and returns the captured
// {param} values by name.
func (p PathPattern) Bind(path string) (map[string]string, bool) {
	if len(p.parts) == 0 {
		return nil, false
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	segs := splitPathSegments(path)
	if len(segs) != len(p.parts) {
		return nil, false
	}
	params := make(map[string]string, len(p.parts))
	for i, part := range p.parts {
		seg := segs[i]
		if seg == "" {
			return nil, false
		}
		if part.param != "" {
			params[part.param] = seg
		} else if seg != part.literal {
			return nil, false
		}
	}
	return params, true
}

func (p PathPattern) String() string { return p.raw }

func splitPathSegments(path string) []string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func isParamSegment(s string) bool {
	return len(s) > 2 && s[0] == '{' && s[len(s)-1] == '}' && !strings.ContainsAny(s[1:len(s)-1], "{}")
}

// MatchPath reports whether path is matched by route, which is either an
// exact path or a {param} pattern.
func MatchPath(route string, path string) bool {
	if p, ok := parsePathPattern(route); ok {
		return p.Match(path)
	}
	return route == path
}
