// Package auth is the identity gate: it validates credentials against an
// injectable provider and issues expiring bearer tokens. The provider is
// an interface so a hardened implementation can swap in real credential
// storage without touching call sites.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers every authentication failure: unknown user,
// password mismatch, malformed or expired token. Callers never learn which
// field was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is the authenticated user profile.
type Identity struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Account is one entry of the credential table handed to the static
// provider. The password is hashed at construction and discarded.
type Account struct {
	Username string
	Password string
	Name     string
}

// Provider authenticates credential pairs and verifies previously issued
// tokens.
type Provider interface {
	// Authenticate returns the identity and a bearer token on success.
	Authenticate(ctx context.Context, username, password string) (Identity, string, error)
	// Verify returns the identity bound to a token.
	Verify(ctx context.Context, token string) (Identity, error)
}

type staticUser struct {
	hash []byte
	name string
}

// StaticProvider holds a fixed account table in memory. Demo passwords are
// bcrypt-hashed up front, so no plaintext survives construction and the
// comparison is not timing-sensitive.
type StaticProvider struct {
	users  map[string]staticUser
	issuer *TokenIssuer
}

var _ Provider = (*StaticProvider)(nil)

// DemoAccounts is the fixed demo credential table.
func DemoAccounts() []Account {
	return []Account{
		{Username: "Sarthak_Pawnar_03", Password: "finance", Name: "Sarthak Pawnar"},
		{Username: "John Doe", Password: "Fullstackdev", Name: "John Doe"},
	}
}

func NewStaticProvider(issuer *TokenIssuer, accounts []Account) (*StaticProvider, error) {
	users := make(map[string]staticUser, len(accounts))
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		users[a.Username] = staticUser{hash: hash, name: a.Name}
	}
	return &StaticProvider{users: users, issuer: issuer}, nil
}

// Authenticate implements Provider.
func (p *StaticProvider) Authenticate(_ context.Context, username, password string) (Identity, string, error) {
	u, ok := p.users[username]
	if !ok {
		return Identity{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return Identity{}, "", ErrInvalidCredentials
	}
	identity := Identity{Username: username, Name: u.name}
	token, err := p.issuer.Issue(identity)
	if err != nil {
		return Identity{}, "", err
	}
	return identity, token, nil
}

// Verify implements Provider. The account must still exist; a token for a
// removed user is rejected.
func (p *StaticProvider) Verify(_ context.Context, token string) (Identity, error) {
	claims, err := p.issuer.Parse(token)
	if err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	u, ok := p.users[claims.Subject]
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Username: claims.Subject, Name: u.name}, nil
}
