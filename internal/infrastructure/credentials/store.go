// Package credentials builds the read-only user table consulted at login.
package credentials

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/adverts/adverts-api/internal/core/domain"
)

// SeedUser is one user as written in code or in a credentials file. Exactly
// one of Password (plaintext, hashed at load) or PasswordHash (bcrypt) is
// expected.
type SeedUser struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"`
	GivenName    string `yaml:"given_name"`
	Surname      string `yaml:"surname"`
	Email        string `yaml:"email"`
	Role         string `yaml:"role"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// DefaultUsers are the built-in accounts used when no credentials file is
// configured.
func DefaultUsers() []SeedUser {
	return []SeedUser{
		{
			Username:  "richard_admin",
			Password:  "passwordAdmin",
			GivenName: "Richard",
			Surname:   "chalk",
			Email:     "richard_admin@email.se",
			Role:      domain.RoleAdmin,
		},
		{
			Username:  "richard_user",
			Password:  "passwordUser",
			GivenName: "Richard",
			Surname:   "Chalk",
			Email:     "richard_user@email.se",
			Role:      domain.RoleUser,
		},
	}
}

// Store implements ports.CredentialStore. It is immutable after New returns.
type Store struct {
	users []domain.Credential
}

// New validates seeds and hashes plaintext passwords with the given bcrypt
// cost (bcrypt.DefaultCost when zero).
func New(seeds []SeedUser, cost int) (*Store, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("credentials: no users defined")
	}

	seen := make(map[string]struct{}, len(seeds))
	users := make([]domain.Credential, 0, len(seeds))

	for i, u := range seeds {
		if u.Username == "" {
			return nil, fmt.Errorf("credentials: user %d has no username", i)
		}
		key := strings.ToLower(u.Username)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("credentials: duplicate username %q", u.Username)
		}
		seen[key] = struct{}{}

		if u.Role != domain.RoleAdmin && u.Role != domain.RoleUser {
			return nil, fmt.Errorf("credentials: user %q has unknown role %q", u.Username, u.Role)
		}

		hash := u.PasswordHash
		switch {
		case hash != "" && u.Password != "":
			return nil, fmt.Errorf("credentials: user %q sets both password and password_hash", u.Username)
		case hash != "":
			if _, err := bcrypt.Cost([]byte(hash)); err != nil {
				return nil, fmt.Errorf("credentials: user %q: invalid password_hash: %w", u.Username, err)
			}
		case u.Password != "":
			h, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
			if err != nil {
				return nil, fmt.Errorf("credentials: hash password of %q: %w", u.Username, err)
			}
			hash = string(h)
		default:
			return nil, fmt.Errorf("credentials: user %q has no password", u.Username)
		}

		users = append(users, domain.Credential{
			Username:     u.Username,
			PasswordHash: hash,
			GivenName:    u.GivenName,
			Surname:      u.Surname,
			Email:        u.Email,
			Role:         u.Role,
		})
	}

	return &Store{users: users}, nil
}

// LoadFromFile reads a YAML document of the form
//
//	users:
//	  - username: alice
//	    password_hash: $2a$10$...
//	    role: Admin
func LoadFromFile(path string, cost int) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("credentials: read %s: %w", path, err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("credentials: parse %s: %w", path, err)
	}
	return New(f.Users, cost)
}

// Users returns a copy of the user table.
func (s *Store) Users() []domain.Credential {
	return slices.Clone(s.users)
}
