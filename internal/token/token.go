// Package token issues and verifies the two bearer token classes: short-lived
// access tokens and longer-lived refresh tokens. The classes are signed with
// independent secrets and are never interchangeable.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

type Service struct {
	cfg Config
}

func NewService(cfg Config) (*Service, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token: both secrets are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{cfg: cfg}, nil
}

func (s *Service) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// IssueAccess mints an access token carrying the subject id and email.
func (s *Service) IssueAccess(accountID uuid.UUID, email string) (string, error) {
	return s.sign(s.cfg.AccessSecret, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(s.cfg.Now()),
			ExpiresAt: jwt.NewNumericDate(s.cfg.Now().Add(s.cfg.AccessTTL)),
		},
	})
}

// IssueRefresh mints a refresh token carrying only the subject id.
func (s *Service) IssueRefresh(accountID uuid.UUID) (string, error) {
	return s.sign(s.cfg.RefreshSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(s.cfg.Now()),
			ExpiresAt: jwt.NewNumericDate(s.cfg.Now().Add(s.cfg.RefreshTTL)),
		},
	})
}

func (s *Service) VerifyAccess(raw string) (*Claims, error) {
	return s.verify(raw, s.cfg.AccessSecret)
}

func (s *Service) VerifyRefresh(raw string) (*Claims, error) {
	return s.verify(raw, s.cfg.RefreshSecret)
}

func (s *Service) sign(secret []byte, claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verify checks signature and expiry against the given secret. Expiry is
// compared to the current time with no grace window.
func (s *Service) verify(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.cfg.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// SubjectID parses the subject claim back into an account id.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalid
	}
	return id, nil
}
