package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adverts/adverts-api/internal/core/domain"
)

type stubCredentialStore struct {
	users []domain.Credential
}

func (s *stubCredentialStore) Users() []domain.Credential { return s.users }

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func newStubCredentialStore(t *testing.T) *stubCredentialStore {
	return &stubCredentialStore{users: []domain.Credential{
		{
			Username:     "richard_admin",
			PasswordHash: hashFor(t, "passwordAdmin"),
			GivenName:    "Richard",
			Surname:      "chalk",
			Email:        "richard_admin@email.se",
			Role:         domain.RoleAdmin,
		},
		{
			Username:     "richard_user",
			PasswordHash: hashFor(t, "passwordUser"),
			GivenName:    "Richard",
			Surname:      "Chalk",
			Email:        "richard_user@email.se",
			Role:         domain.RoleUser,
		},
	}}
}

var testTokenConfig = TokenConfig{Secret: "test-secret-key-0123456789", Issuer: "adverts-test", Audience: "adverts-clients"}

func newTestAuthService(t *testing.T) *AuthService {
	return NewAuthService(newStubCredentialStore(t), testTokenConfig, zerolog.Nop())
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newTestAuthService(t)

	token, cred, err := svc.Login(context.Background(), "richard_admin", "passwordAdmin")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if cred == nil || cred.Username != "richard_admin" {
		t.Fatalf("unexpected credential: %+v", cred)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testTokenConfig.Secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleAdmin {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
	if claims["iss"] != testTokenConfig.Issuer {
		t.Fatalf("unexpected issuer %v", claims["iss"])
	}
	if parsed.Header["alg"] != "HS256" {
		t.Fatalf("expected HS256, got %v", parsed.Header["alg"])
	}
}

func TestAuthService_Authenticate_CaseInsensitiveUsername(t *testing.T) {
	svc := newTestAuthService(t)

	cred, err := svc.Authenticate(context.Background(), "RICHARD_User", "passwordUser")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if cred.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", cred.Role)
	}
}

func TestAuthService_Authenticate_Failures(t *testing.T) {
	svc := newTestAuthService(t)

	cases := []struct{ username, password string }{
		{"richard_admin", "passwordadmin"},
		{"richard_admin", "passwordUser"},
		{"ghost", "passwordAdmin"},
		{"", "passwordAdmin"},
		{"richard_admin", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Authenticate(context.Background(), tc.username, tc.password); err != domain.ErrInvalidCredentials {
			t.Fatalf("%s/%s: expected ErrInvalidCredentials, got %v", tc.username, tc.password, err)
		}
	}
}

func TestAuthService_IssueValidate_RoundTrip(t *testing.T) {
	svc := newTestAuthService(t)

	for _, u := range svc.store.Users() {
		cred := u
		token, err := svc.Issue(&cred)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		claims, err := svc.Validate(token)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if claims.Username != cred.Username || claims.Role != cred.Role || claims.Email != cred.Email {
			t.Fatalf("claims do not match credential: %+v", claims)
		}
		if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != domain.TokenLifetime {
			t.Fatalf("expected lifetime %v, got %v", domain.TokenLifetime, got)
		}
	}
}

func TestAuthService_Validate_Expiry(t *testing.T) {
	svc := newTestAuthService(t)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(&svc.store.Users()[0])
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(14 * time.Minute) }
	if _, err := svc.Validate(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(15*time.Minute + time.Second) }
	claims, err := svc.Validate(token)
	if err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
	if claims != nil {
		t.Fatalf("expected no claims on failure")
	}
}

func TestAuthService_Validate_Rejects(t *testing.T) {
	svc := newTestAuthService(t)
	good, err := svc.Issue(&svc.store.Users()[0])
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := func(cfg TokenConfig) string {
		s := NewAuthService(svc.store, cfg, zerolog.Nop())
		tok, err := s.Issue(&svc.store.Users()[0])
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		return tok
	}

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"username": "richard_admin",
		"role":     domain.RoleAdmin,
		"iss":      testTokenConfig.Issuer,
		"aud":      testTokenConfig.Audience,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	cases := map[string]string{
		"garbage":        "not-a-token",
		"tampered":       tampered,
		"wrong secret":   other(TokenConfig{Secret: "another-secret", Issuer: testTokenConfig.Issuer, Audience: testTokenConfig.Audience}),
		"wrong issuer":   other(TokenConfig{Secret: testTokenConfig.Secret, Issuer: "someone-else", Audience: testTokenConfig.Audience}),
		"wrong audience": other(TokenConfig{Secret: testTokenConfig.Secret, Issuer: testTokenConfig.Issuer, Audience: "elsewhere"}),
		"alg none":       noneToken,
	}

	for name, tok := range cases {
		if _, err := svc.Validate(tok); err != domain.ErrInvalidToken {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestAuthService_Authenticate_UnknownUserStillComparesOnce(t *testing.T) {
	svc := newTestAuthService(t)

	var hashes [][]byte
	svc.compare = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	if _, err := svc.Authenticate(context.Background(), "ghost", "passwordAdmin"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("expected one comparison for an unknown user, got %d", len(hashes))
	}
	if cost, err := bcrypt.Cost(hashes[0]); err != nil || cost != bcrypt.MinCost {
		t.Fatalf("decoy hash should match the stored cost, got %d (%v)", cost, err)
	}

	hashes = nil
	if _, err := svc.Authenticate(context.Background(), "richard_admin", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("expected one comparison for a wrong password, got %d", len(hashes))
	}
}
