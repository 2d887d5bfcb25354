package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cinedex/cinedex/internal/domain"
)

const minPasswordLen = 8

// Service handles account registration and session tokens.
type Service struct {
	repo     Repository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// New creates an auth service signing tokens with the given HS256 secret.
func New(repo Repository, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates an account with the default role. The password is
// stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, email, username, password string) (domain.UserView, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.UserView{}, fmt.Errorf("%w: invalid email", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(username) == "" {
		return domain.UserView{}, fmt.Errorf("%w: username is required", domain.ErrInvalidArgument)
	}
	if len(password) < minPasswordLen {
		return domain.UserView{}, fmt.Errorf("%w: password must be at least %d characters",
			domain.ErrInvalidArgument, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return domain.UserView{}, err
	}
	return u.View(), nil
}

// Login verifies credentials and issues a signed session token.
// Unknown email and wrong password return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, domain.UserView, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", domain.UserView{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", domain.UserView{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.UserView{}, fmt.Errorf("sign token: %w", err)
	}
	return token, u.View(), nil
}

// Authenticate resolves a bearer token to its account.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	u, err := s.repo.Get(ctx, claims.Subject)
	if err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return u, nil
}
