package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/store"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// AuthService is the credential boundary. Secrets are compared as stored.
type AuthService struct {
	store *store.Store
	log   *zap.Logger
}

func NewAuthService(st *store.Store, log *zap.Logger) *AuthService {
	return &AuthService{store: st, log: log}
}

// Authenticate returns the matching user, or nil when email, password or role do not match
func (s *AuthService) Authenticate(email, password string, role model.Role) *model.User {
	u, ok := s.store.UserByEmail(strings.TrimSpace(email))
	if !ok || u.CredentialSecret != password || u.Role != role {
		return nil
	}
	return &u
}

// Register creates an account. A taken email fails with model.ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string, role model.Role) (*model.User, error) {
	if role != model.RoleCitizen && role != model.RoleAdmin {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	u := model.User{
		ID:               ulid.Make().String(),
		Name:             name,
		Email:            strings.TrimSpace(email),
		Phone:            phone,
		CredentialSecret: password,
		Role:             role,
	}
	if err := s.store.InsertUser(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("User registered", zap.String("id", u.ID), zap.String("role", string(role)))
	return &u, nil
}

// Login authenticates and switches the session to the user's landing view
func (s *AuthService) Login(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	u := s.Authenticate(email, password, role)
	if u == nil {
		s.log.Info("Access denied", zap.String("email", email), zap.String("role", string(role)))
		return nil, fmt.Errorf("%w: access denied", model.ErrNotAuthorized)
	}
	s.store.SetSession(ctx, *u, model.ViewForRole(u.Role))
	return u, nil
}

// Logout resets the session to the anonymous placeholder on the login view
func (s *AuthService) Logout(ctx context.Context) {
	s.store.SetSession(ctx, model.Anonymous(), model.ViewLogin)
}

// Session returns the current user and view
func (s *AuthService) Session() (model.User, model.View) {
	return s.store.CurrentUser(), s.store.CurrentView()
}
