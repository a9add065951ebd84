// Package identity carries the authenticated caller through context.
// The upstream auth layer computes roles and the base scope; this engine
// trusts the identity as-is and never re-derives it.
package identity

import (
	"context"

	"pointorder/internal/core/id"
)

// Well-known roles consumed by the lifecycle guards.
const (
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RolePointOwner = "point_owner"
)

// Identity contains the authenticated caller information.
type Identity struct {
	UserID id.ID
	Name   string
	Roles  []string

	// BaseID scopes every read and write to one operating unit.
	BaseID id.ID
}

type identityKey struct{}

// WithIdentity adds Identity to context.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// Get returns Identity from context, or nil when the context is anonymous.
func Get(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}

// UserID returns the caller's user id or id.Nil().
func UserID(ctx context.Context) id.ID {
	if ident := Get(ctx); ident != nil {
		return ident.UserID
	}
	return id.Nil()
}

// BaseID returns the caller's base scope or id.Nil().
func BaseID(ctx context.Context) id.ID {
	if ident := Get(ctx); ident != nil {
		return ident.BaseID
	}
	return id.Nil()
}

// HasRole checks if the caller holds a specific role.
func HasRole(ctx context.Context, role string) bool {
	ident := Get(ctx)
	if ident == nil {
		return false
	}
	for _, r := range ident.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the caller holds at least one of the roles.
func HasAnyRole(ctx context.Context, roles ...string) bool {
	for _, r := range roles {
		if HasRole(ctx, r) {
			return true
		}
	}
	return false
}
