package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adverts/adverts-api/internal/core/domain"
	"github.com/adverts/adverts-api/internal/core/ports"
)

// TokenConfig holds the signing key and the issuer/audience stamped into and
// required from every token.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// tokenClaims is the JWT payload.
type tokenClaims struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements login, token issuing and token validation.
type AuthService struct {
	store   ports.CredentialStore
	cfg     TokenConfig
	now     func() time.Time
	compare func(hash, password []byte) error
	logger  zerolog.Logger

	// decoy is hashed at the cost of the stored credentials and compared
	// against when no username matches, so both failures cost one bcrypt run.
	decoy func() []byte
}

func NewAuthService(store ports.CredentialStore, cfg TokenConfig, logger zerolog.Logger) *AuthService {
	s := &AuthService{
		store:   store,
		cfg:     cfg,
		now:     time.Now,
		compare: bcrypt.CompareHashAndPassword,
		logger:  logger,
	}
	s.decoy = sync.OnceValue(s.decoyHash)
	return s
}

func (s *AuthService) decoyHash() []byte {
	cost := bcrypt.DefaultCost
	if users := s.store.Users(); len(users) > 0 {
		if c, err := bcrypt.Cost([]byte(users[0].PasswordHash)); err == nil {
			cost = c
		}
	}
	h, err := bcrypt.GenerateFromPassword([]byte("decoy-password"), cost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build decoy hash")
		return nil
	}
	return h
}

// Login authenticates the pair and returns a freshly issued token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.Credential, error) {
	cred, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.Issue(cred)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("username", cred.Username).Str("role", cred.Role).Msg("token issued")
	return token, cred, nil
}

// Authenticate returns the first credential whose username matches
// case-insensitively and whose password hash accepts password. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(_ context.Context, username, password string) (*domain.Credential, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	matched := false
	for _, u := range s.store.Users() {
		if !strings.EqualFold(u.Username, username) {
			continue
		}
		matched = true
		if s.compare([]byte(u.PasswordHash), []byte(password)) == nil {
			cred := u
			return &cred, nil
		}
	}
	if !matched {
		_ = s.compare(s.decoy(), []byte(password))
	}

	s.logger.Debug().Str("username", username).Msg("authentication failed")
	return nil, domain.ErrInvalidCredentials
}

// Issue signs a token for cred valid for domain.TokenLifetime.
func (s *AuthService) Issue(cred *domain.Credential) (string, error) {
	now := s.now().UTC()
	claims := tokenClaims{
		Username:  cred.Username,
		Email:     cred.Email,
		GivenName: cred.GivenName,
		Surname:   cred.Surname,
		Role:      cred.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   cred.Username,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(domain.TokenLifetime)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.Secret))
}

// Validate checks signature, algorithm, issuer, audience and expiry. Any
// failure yields domain.ErrInvalidToken and no claims.
func (s *AuthService) Validate(token string) (*domain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var claims tokenClaims
	tkn, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !tkn.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug().Msg("expired token rejected")
		}
		return nil, domain.ErrInvalidToken
	}
	if claims.Username == "" || claims.Role == "" {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.Claims{
		Username:  claims.Username,
		Email:     claims.Email,
		GivenName: claims.GivenName,
		Surname:   claims.Surname,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
