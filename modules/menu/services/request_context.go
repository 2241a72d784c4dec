package services

import "context"

type requestPathKey struct{}

// WithRequestPath records the raw path of the request being rendered.
func WithRequestPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, requestPathKey{}, path)
}

func RequestPathFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(requestPathKey{}).(string)
	return p, ok
}
