package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken      = errors.New("could not validate credentials")
	ErrUnsupportedAlgo   = errors.New("unsupported signing algorithm")
	ErrEmptySecret       = errors.New("signing secret is empty")
	ErrEmptyTokenSubject = errors.New("token subject is empty")
)

// Scope restricts which operation may consume a token.
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
	// ScopeNone marks email-verification tokens. Decoding with ScopeNone
	// checks signature and expiry only.
	ScopeNone Scope = ""
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultEmailTTL   = 7 * 24 * time.Hour
)

// Claims represents the JWT payload: subject is the user email.
type Claims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope,omitempty"`
}

// TokenConfig is the immutable configuration of a TokenService.
type TokenConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration
}

// TokenService issues and decodes scoped, HMAC-signed tokens.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
	now        func() time.Time
}

// NewTokenService validates cfg and returns a TokenService. Zero TTLs fall
// back to the defaults; an empty algorithm means HS256.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgo, alg)
	}

	s := &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		emailTTL:   cfg.EmailTTL,
		now:        time.Now,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = DefaultAccessTTL
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = DefaultRefreshTTL
	}
	if s.emailTTL <= 0 {
		s.emailTTL = DefaultEmailTTL
	}
	return s, nil
}

// IssueAccessToken returns a short-lived access token for subject.
func (s *TokenService) IssueAccessToken(subject string) (string, error) {
	return s.issue(subject, ScopeAccess, s.accessTTL)
}

// IssueRefreshToken returns a long-lived refresh token for subject.
func (s *TokenService) IssueRefreshToken(subject string) (string, error) {
	return s.issue(subject, ScopeRefresh, s.refreshTTL)
}

// IssueEmailToken returns an unscoped email-verification token for subject.
func (s *TokenService) IssueEmailToken(subject string) (string, error) {
	return s.issue(subject, ScopeNone, s.emailTTL)
}

func (s *TokenService) issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrEmptyTokenSubject
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: scope,
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Decode verifies signature, expiry and scope and returns the subject.
// With ScopeNone any scope is accepted. Every failure is ErrInvalidToken.
func (s *TokenService) Decode(tokenString string, expected Scope) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if expected != ScopeNone && claims.Scope != expected {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
