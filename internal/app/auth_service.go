package app

//go:generate mockgen -source=auth_service.go -destination=../../mocks/app.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"aichat-backend/internal/model"
	"aichat-backend/internal/pkg/jwtutil"
	"aichat-backend/internal/repository"
)

// Denylist stores revoked session tokens.
type Denylist interface {
	Block(ctx context.Context, token string, expiresAt time.Time) error
	IsBlocked(ctx context.Context, token string) (bool, error)
}

type AuthService struct {
	users         repository.UserStore
	denylist      Denylist
	jwtSecret     string
	jwtExpiration time.Duration
	validate      *validator.Validate
}

type RegisterInput struct {
	FirstName string `validate:"required,min=3,max=20"`
	LastName  string `validate:"max=20"`
	EmailID   string `validate:"required,email"`
	Password  string `validate:"required,passwordlen,strongpassword"`
	Age       *int   `validate:"omitempty,min=6,max=80"`
}

type LoginInput struct {
	EmailID  string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func NewAuthService(users repository.UserStore, denylist Denylist, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &AuthService{
		users:         users,
		denylist:      denylist,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		validate:      newValidator(),
	}
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.jwtExpiration
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.EmailID = strings.ToLower(strings.TrimSpace(input.EmailID))

	if err := s.validate.Struct(input); err != nil {
		return nil, describe(err)
	}

	exists, err := s.users.ExistsByEmail(ctx, input.EmailID)
	if err != nil {
		return nil, fmt.Errorf("check email failed: %w", err)
	}
	if exists {
		return nil, ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		EmailID:      input.EmailID,
		Age:          input.Age,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user failed: %w", err)
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.EmailID))
	if email == "" || input.Password == "" {
		return nil, invalid("Email and Password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Logout revokes token until its own expiry. The signature is not checked so
// that any token a client still holds can be revoked.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return invalid("Token not found in cookies")
	}

	claims, err := jwtutil.DecodeUnverified(token)
	if err != nil || claims.ExpiresAt == nil {
		return invalid("Invalid token")
	}

	// The payload is unverified, so the entry never outlives a token this
	// service could have issued.
	expiresAt := claims.ExpiresAt.Time
	if limit := time.Now().Add(s.jwtExpiration); expiresAt.After(limit) {
		expiresAt = limit
	}
	if err := s.denylist.Block(ctx, token, expiresAt); err != nil {
		return fmt.Errorf("revoke token failed: %w", err)
	}
	return nil
}

// ValidateSession resolves a session token to its user. Revoked tokens and
// tokens of deleted users are rejected with ErrUnauthorized; store or
// denylist outages are returned as plain errors.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	blocked, err := s.denylist.IsBlocked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check denylist failed: %w", err)
	}
	if blocked {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load session user failed: %w", err)
	}
	return user, nil
}

// Profile re-reads the user so that the response reflects the stored record.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load profile failed: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.EmailID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
