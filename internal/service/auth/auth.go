// Package auth issues and verifies admin tokens (HS256 JWT) and hashes
// admin passwords with bcrypt.
package auth

import (
	"errors"
	"fmt"
	"time"

	"AstroChart/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	cost   int
	now    func() time.Time
}

type Option func(*Service)

// WithTTL sets token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithIssuer sets the iss claim.
func WithIssuer(iss string) Option {
	return func(s *Service) { s.issuer = iss }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	s := &Service{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
		issuer: "astrochart",
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// HashPassword returns the bcrypt hash of password.
func (s *Service) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func (s *Service) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Issue signs a token whose subject is username.
func (s *Service) Issue(username string) (models.Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return models.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return models.Token{
		AccessToken: signed,
		TokenType:   "bearer",
		Username:    username,
		ExpiresAt:   exp.UTC(),
	}, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// subject. Every failure wraps models.ErrUnauthorized.
func (s *Service) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", models.ErrUnauthorized)
	}
	return claims.Subject, nil
}
