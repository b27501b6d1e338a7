package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/adverts/adverts-api/internal/core/domain"
)

func TestAuthorize_RoleMembership(t *testing.T) {
	cases := []struct {
		name string
		role string
		req  Requirement
		want error
	}{
		{"admin on admin-only", domain.RoleAdmin, Requirement{Roles: Roles(domain.RoleAdmin)}, nil},
		{"user on admin-only", domain.RoleUser, Requirement{Roles: Roles(domain.RoleAdmin)}, domain.ErrForbidden},
		{"user on read", domain.RoleUser, Requirement{Roles: Roles(domain.RoleAdmin, domain.RoleUser)}, nil},
		{"order does not matter", domain.RoleUser, Requirement{Roles: Roles(domain.RoleUser, domain.RoleAdmin)}, nil},
		{"admin not implied", domain.RoleAdmin, Requirement{Roles: Roles(domain.RoleUser)}, domain.ErrForbidden},
		{"unknown role", "Guest", Requirement{Roles: Roles(domain.RoleAdmin, domain.RoleUser)}, domain.ErrForbidden},
		{"empty set", domain.RoleAdmin, Requirement{}, domain.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(&domain.Claims{Username: "u", Role: tc.role}, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthorize_Anonymous(t *testing.T) {
	if err := Authorize(nil, Requirement{Anonymous: true}); err != nil {
		t.Fatalf("anonymous requirement should allow nil claims, got %v", err)
	}
	if err := Authorize(nil, Requirement{Roles: Roles(domain.RoleAdmin)}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPolicy_Table(t *testing.T) {
	admin := &domain.Claims{Role: domain.RoleAdmin}
	user := &domain.Claims{Role: domain.RoleUser}

	for _, op := range []Operation{OpCreateAdvert, OpUpdateAdvert, OpPatchAdvert, OpDeleteAdvert} {
		if err := Allow(admin, op); err != nil {
			t.Fatalf("%s: admin denied: %v", op, err)
		}
		if err := Allow(user, op); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected user to be forbidden, got %v", op, err)
		}
		if err := Allow(nil, op); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected anonymous to be unauthenticated, got %v", op, err)
		}
	}

	for _, op := range []Operation{OpListAdverts, OpGetAdvert} {
		if err := Allow(admin, op); err != nil {
			t.Fatalf("%s: admin denied: %v", op, err)
		}
		if err := Allow(user, op); err != nil {
			t.Fatalf("%s: user denied: %v", op, err)
		}
	}

	if err := Allow(nil, OpLogin); err != nil {
		t.Fatalf("login must be anonymous, got %v", err)
	}
	if err := Allow(admin, Operation("adverts.purge")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("unknown operations must be denied, got %v", err)
	}
}

func TestCheck_UsesContextClaims(t *testing.T) {
	ctx := WithClaims(context.Background(), &domain.Claims{Role: domain.RoleUser})
	if err := Check(ctx, OpGetAdvert); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Check(context.Background(), OpGetAdvert); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without claims, got %v", err)
	}
}
