// Package auth issues and verifies the signed player tokens used by
// the websocket and HTTP layers. Guests get a token too; accounts
// just add a password behind it.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is how long an issued token stays valid.
const tokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for malformed, expired or badly signed
// tokens.
var ErrInvalidToken = errors.New("invalid token")

// ErrBadCredentials is returned when a password check fails.
var ErrBadCredentials = errors.New("invalid username or password")

// Claims is the token payload.
type Claims struct {
	DisplayName string `json:"display_name"`
	Guest       bool   `json:"guest"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a shared HMAC secret.
type Service struct {
	secret []byte
}

// NewService creates a token service. The secret must be non-empty.
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: empty jwt secret")
	}
	return &Service{secret: []byte(secret)}, nil
}

// IssueToken signs a token for a player id.
func (s *Service) IssueToken(playerID uuid.UUID, displayName string, guest bool) (string, error) {
	now := time.Now()
	claims := Claims{
		DisplayName: displayName,
		Guest:       guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueGuestToken mints a fresh identity with no account behind it.
func (s *Service) IssueGuestToken(displayName string) (uuid.UUID, string, error) {
	id := uuid.New()
	tok, err := s.IssueToken(id, displayName, true)
	return id, tok, err
}

// VerifyToken parses a token and returns the player id and display
// name it carries.
func (s *Service) VerifyToken(token string) (uuid.UUID, string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	return id, claims.DisplayName, nil
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against its stored
// hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}
