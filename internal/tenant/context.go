// Package tenant carries the caller-asserted tenant id through request
// context. The id is opaque; components only use it as a partition key.
package tenant

import "context"

type contextKey string

const tenantKey contextKey = "tenant"

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantKey, id)
}

func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tenantKey).(string)
	return id
}
