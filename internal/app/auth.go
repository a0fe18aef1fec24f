package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"satn_chatbot/internal/domain"
)

const TokenType = "bearer"

type AuthService struct {
	users  domain.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users domain.UserRepository, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthService{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Login checks the credentials and returns a signed access token whose
// subject is the user's email.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = normEmail(email)
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", err
	}
	if u.HashedPassword == nil || !u.IsActive {
		return "", fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.HashedPassword), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}
	return s.Issue(email)
}

func (s *AuthService) Issue(subject string) (string, error) {
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: could not validate credentials", domain.ErrUnauthorized)
	}
	u, err := s.users.GetUserByEmail(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !u.IsActive) {
		return domain.User{}, fmt.Errorf("%w: could not validate credentials", domain.ErrUnauthorized)
	}
	return u, err
}

// EnsureAdmin creates the bootstrap admin when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normEmail(email)
	if email == "" || password == "" {
		log.Warn().Msg("ADMIN_EMAIL/ADMIN_PASSWORD not set; no admin user bootstrapped")
		return nil
	}
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	h := string(hashed)
	if _, err := s.users.CreateUser(ctx, domain.User{
		Email:          &email,
		Username:       &email,
		HashedPassword: &h,
		IsActive:       true,
		IsAdmin:        true,
	}); err != nil && !errors.Is(err, domain.ErrConflict) {
		return err
	}
	log.Info().Str("email", email).Msg("admin user created")
	return nil
}
