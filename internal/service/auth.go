package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/bookshelf/internal/domain"
)

const minPasswordLength = 6

// avatarURL is the default profile image, seeded with the username.
const avatarURL = "https://api.dicebear.com/5.x/initials/svg?seed="

// Session is the result of a successful registration or login.
type Session struct {
	Token string
	User  *domain.User
}

// AuthService orchestrates registration, login and principal resolution on
// top of the hasher, the token service and the user directory.
type AuthService struct {
	users  domain.UserRepository
	hasher *PasswordHasher
	tokens *TokenService

	// dummyHash is verified against when the login email is unknown, so
	// both failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService creates a new AuthService. It hashes a throwaway password
// once to build the timing decoy used by Login.
func NewAuthService(ctx context.Context, users domain.UserRepository, hasher *PasswordHasher, tokens *TokenService) (*AuthService, error) {
	dummy, err := hasher.Hash(ctx, "timing-decoy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare login decoy hash: %w", err)
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, dummyHash: dummy}, nil
}

// Register validates input, creates the account and issues a session.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", domain.ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes long", domain.ErrInvalidInput, maxPasswordBytes)
	}

	// Early, friendly conflicts. The unique indexes remain the authority:
	// a concurrent registration that slips past these checks fails in Create
	// with the same errors.
	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		ProfileImage: avatarURL + url.QueryEscape(username),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateCredential) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.newSession(user)
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	return nil
}

// Login verifies credentials and issues a session. An unknown email and a
// wrong password both return domain.ErrAuthentication.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		s.hasher.Verify(ctx, password, s.dummyHash)
		return nil, domain.ErrAuthentication
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrAuthentication
	}

	return s.newSession(user)
}

// Authenticate resolves a bearer token to a principal. The returned user
// never carries the password hash.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindPrincipal(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: subject %s", domain.ErrPrincipalNotFound, claims.SubjectID)
		}
		return nil, fmt.Errorf("find principal: %w", err)
	}
	return user, nil
}

func (s *AuthService) newSession(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	slog.Info("session issued", "user_id", user.ID)

	projection := *user
	projection.PasswordHash = ""
	return &Session{Token: token, User: &projection}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
