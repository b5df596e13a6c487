package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ticketdesk/ticketdesk/internal/auth"
	"github.com/ticketdesk/ticketdesk/internal/metrics"
	"github.com/ticketdesk/ticketdesk/internal/model"
	"github.com/ticketdesk/ticketdesk/internal/repository"
)

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token    string `json:"token"`
	IsAdmin  bool   `json:"is_admin"`
	Username string `json:"username"`
}

// AuthService registers accounts and issues session tokens.
type AuthService struct {
	users   UserStore
	tokens  TokenIssuer
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenIssuer, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		logger:  logger.With("component", "auth"),
		metrics: recorder,
	}
}

// Signup creates a non-admin account and returns a session for it.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.IncSignup(false)
		return nil, invalid("Username and password required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           newID(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      false,
		CreatedAt:    now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		s.metrics.IncSignup(false)
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncSignup(true)
	s.logger.Info("user registered", "user_id", user.ID)
	return s.session(user)
}

// Login checks the password and returns a session. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials after the same hashing work.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash := auth.DummyHash()
	if user != nil {
		hash = user.PasswordHash
	}

	ok, verr := auth.VerifyPassword(password, hash)
	if verr != nil {
		s.logger.Error("stored password hash unusable", "user_id", userID(user), "error", verr)
	}
	if user == nil || !ok || verr != nil {
		s.metrics.IncLogin(false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLogin(true)
	return s.session(user)
}

// SeedAdmin creates an admin account when none exists. It reports whether
// an account was created.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	count, err := s.users.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, invalid("admin username and password required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.User{
		ID:           newID(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    now(),
	}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return false, fmt.Errorf("seed admin %q: %w", username, ErrUsernameTaken)
		}
		return false, fmt.Errorf("seed admin: %w", err)
	}

	s.logger.Info("admin user created", "username", username)
	return true, nil
}

func (s *AuthService) session(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{
		Token:    token,
		IsAdmin:  user.IsAdmin,
		Username: user.Username,
	}, nil
}

func userID(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
