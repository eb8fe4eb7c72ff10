package domain

import (
	"context"
	"slices"
)

// Principal is the request-scoped authentication context attached by the
// authentication middleware once a bearer token has been fully verified.
type Principal struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether role is part of the principal's role set.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, role)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p. The principal is copied so
// later mutation of the caller's value is never visible to the request.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	p.Roles = slices.Clone(p.Roles)
	return context.WithValue(ctx, principalKey{}, &p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
