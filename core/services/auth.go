package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

type LoginResult struct {
	AccessToken string        `json:"accessToken"`
	User        domain.Record `json:"user"`
}

// AuthService exchanges user credentials for access tokens.
type AuthService struct {
	users *domain.Entity
	store ports.EntityStore
	gate  *Gate
}

func NewAuthService(schema *domain.Schema, store ports.EntityStore, gate *Gate) (*AuthService, error) {
	users, err := schema.Entity(domain.Users)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users: users,
		store: store,
		gate:  gate,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrUnauthorized)
	}

	var user domain.Record
	for rec, err := range s.store.FindAll(ctx, s.users, domain.Filter{"email": email}) {
		if err != nil {
			return nil, err
		}
		user = rec
		break
	}
	if user == nil {
		return nil, fmt.Errorf("%w: invalid login", domain.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.String("password")), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid login", domain.ErrUnauthorized)
	}

	token, _, err := s.gate.Issue(user.ID())
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken: token,
		User:        s.users.Public(user),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, id *domain.Identity) error {
	return s.gate.Revoke(ctx, id)
}

// Authenticate resolves a bearer token to the caller identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	return s.gate.Authenticate(ctx, token)
}
