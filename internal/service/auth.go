package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/fishlog/internal/domain"
	"github.com/pkordes/fishlog/internal/repo"
)

// TokenIssuer creates a bearer token for a user.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// RegisterInput is the payload for creating an account.
// bcrypt ignores anything past 72 bytes, so longer passwords are refused.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"min=6,max=72"`
}

// Session is an authenticated user together with their bearer token.
type Session struct {
	User  domain.User
	Token string
}

// AuthService registers and authenticates users.
type AuthService struct {
	users  repo.UserRepo
	tokens TokenIssuer
	cost   int
}

// NewAuthService constructs an AuthService hashing with bcrypt.DefaultCost.
func NewAuthService(users repo.UserRepo, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Register creates a user and signs them in.
// Returns domain.ErrConflict if the email is already registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{Name: in.Name, Email: in.Email, PasswordHash: string(hash)})
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return s.session(user)
}

// Login checks the credentials and returns a fresh session.
// Unknown email and wrong password both yield domain.ErrUnauthenticated.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
	}
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
	}
	return s.session(user)
}

// Me returns the user behind an authenticated request. A token for a user
// that no longer exists counts as unauthenticated.
func (s *AuthService) Me(ctx context.Context, userID int64) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthenticated)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Me: %w", err)
	}
	return user, nil
}

// ListUsers returns everyone except the caller, for picking buddies.
// Always returns a non-nil slice.
func (s *AuthService) ListUsers(ctx context.Context, requesterID int64) ([]domain.User, error) {
	users, err := s.users.ListExcept(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("service.AuthService.ListUsers: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

func (s *AuthService) session(user domain.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("service.AuthService: issue token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}
