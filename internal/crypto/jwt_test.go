package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	s, err := NewTokenService(TokenConfig{Secret: "test-secret"})
	require.NoError(t, err)
	return s
}

func TestNewTokenService_Defaults(t *testing.T) {
	s := newTestTokenService(t)
	assert.Equal(t, DefaultAccessTTL, s.accessTTL)
	assert.Equal(t, DefaultRefreshTTL, s.refreshTTL)
	assert.Equal(t, DefaultEmailTTL, s.emailTTL)
	assert.Equal(t, "HS256", s.method.Alg())
}

func TestNewTokenService_RejectsBadConfig(t *testing.T) {
	_, err := NewTokenService(TokenConfig{})
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewTokenService(TokenConfig{Secret: "s", Algorithm: "RS256"})
	assert.ErrorIs(t, err, ErrUnsupportedAlgo)

	_, err = NewTokenService(TokenConfig{Secret: "s", Algorithm: "none"})
	assert.ErrorIs(t, err, ErrUnsupportedAlgo)

	s, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "HS512"})
	require.NoError(t, err)
	assert.Equal(t, "HS512", s.method.Alg())
}

func TestDecode_RoundTripPerScope(t *testing.T) {
	s := newTestTokenService(t)

	access, err := s.IssueAccessToken("alice@example.com")
	require.NoError(t, err)
	refresh, err := s.IssueRefreshToken("alice@example.com")
	require.NoError(t, err)
	email, err := s.IssueEmailToken("alice@example.com")
	require.NoError(t, err)

	sub, err := s.Decode(access, ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)

	sub, err = s.Decode(refresh, ScopeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)

	sub, err = s.Decode(email, ScopeNone)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)
}

func TestDecode_ScopeMismatch(t *testing.T) {
	s := newTestTokenService(t)

	access, _ := s.IssueAccessToken("a@example.com")
	refresh, _ := s.IssueRefreshToken("a@example.com")
	email, _ := s.IssueEmailToken("a@example.com")

	_, err := s.Decode(refresh, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Decode(access, ScopeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Decode(email, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Decode(email, ScopeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_Expired(t *testing.T) {
	s := newTestTokenService(t)
	issued := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	token, err := s.IssueAccessToken("a@example.com")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(DefaultAccessTTL - time.Second) }
	_, err = s.Decode(token, ScopeAccess)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(DefaultAccessTTL + time.Second) }
	_, err = s.Decode(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_WrongSecretAndGarbage(t *testing.T) {
	s := newTestTokenService(t)
	other, err := NewTokenService(TokenConfig{Secret: "other-secret"})
	require.NoError(t, err)

	token, _ := other.IssueAccessToken("a@example.com")
	_, err = s.Decode(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Decode("not-a-valid-token", ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_RejectsOtherAlgorithm(t *testing.T) {
	s := newTestTokenService(t)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scope: ScopeAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.Decode(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_RequiresExpiry(t *testing.T) {
	s := newTestTokenService(t)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "a@example.com"},
		Scope:            ScopeAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.Decode(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssue_TokensAreDistinct(t *testing.T) {
	s := newTestTokenService(t)
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	a, _ := s.IssueRefreshToken("a@example.com")
	b, _ := s.IssueRefreshToken("a@example.com")
	assert.NotEqual(t, a, b, "tokens issued in the same second must differ")
}

func TestIssue_EmptySubject(t *testing.T) {
	_, err := newTestTokenService(t).IssueAccessToken("")
	assert.ErrorIs(t, err, ErrEmptyTokenSubject)
}
