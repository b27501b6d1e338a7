// Package authz is the authorization gate: a declarative table of which roles
// may run each operation, and the check that applies it.
package authz

import (
	"context"

	"github.com/adverts/adverts-api/internal/core/domain"
)

// Operation identifies a guarded use case.
type Operation string

const (
	OpLogin        Operation = "login"
	OpCreateAdvert Operation = "adverts.create"
	OpListAdverts  Operation = "adverts.list"
	OpGetAdvert    Operation = "adverts.get"
	OpUpdateAdvert Operation = "adverts.update"
	OpPatchAdvert  Operation = "adverts.patch"
	OpDeleteAdvert Operation = "adverts.delete"
)

// RoleSet is matched exactly; there is no hierarchy between roles.
type RoleSet map[string]struct{}

// Roles builds a RoleSet.
func Roles(roles ...string) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has reports whether role is a member of the set.
func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

// Requirement is what an operation demands from the caller.
type Requirement struct {
	Anonymous bool
	Roles     RoleSet
}

// Policy maps every operation to its requirement. Operations not listed here
// are denied.
var Policy = map[Operation]Requirement{
	OpLogin:        {Anonymous: true},
	OpListAdverts:  {Roles: Roles(domain.RoleAdmin, domain.RoleUser)},
	OpGetAdvert:    {Roles: Roles(domain.RoleAdmin, domain.RoleUser)},
	OpCreateAdvert: {Roles: Roles(domain.RoleAdmin)},
	OpUpdateAdvert: {Roles: Roles(domain.RoleAdmin)},
	OpPatchAdvert:  {Roles: Roles(domain.RoleAdmin)},
	OpDeleteAdvert: {Roles: Roles(domain.RoleAdmin)},
}

// Authorize decides whether claims satisfy req. nil claims mean an anonymous
// caller.
func Authorize(claims *domain.Claims, req Requirement) error {
	if req.Anonymous {
		return nil
	}
	if claims == nil {
		return domain.ErrUnauthenticated
	}
	if !req.Roles.Has(claims.Role) {
		return domain.ErrForbidden
	}
	return nil
}

// Allow looks op up in Policy and authorizes claims against it.
func Allow(claims *domain.Claims, op Operation) error {
	req, ok := Policy[op]
	if !ok {
		return domain.ErrForbidden
	}
	return Authorize(claims, req)
}

type claimsKey struct{}

// WithClaims attaches validated claims to ctx.
func WithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by WithClaims, or nil.
func ClaimsFromContext(ctx context.Context) *domain.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*domain.Claims)
	return claims
}

// Check authorizes the caller carried by ctx for op.
func Check(ctx context.Context, op Operation) error {
	return Allow(ClaimsFromContext(ctx), op)
}
