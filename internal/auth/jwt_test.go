package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMinter_MintAndParse(t *testing.T) {
	m, err := NewMinter("s3cr3t", time.Hour)
	require.NoError(t, err)

	fixed := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	token, expires, err := m.Mint("demo@demo.com")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(time.Hour), expires)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "demo@demo.com", claims.Email)
	assert.Equal(t, "demo@demo.com", claims.Subject)

	exp, ok := UnverifiedExpiry(token)
	require.True(t, ok)
	assert.True(t, exp.Equal(expires))
}

func TestMinter_RejectsExpiredAndForeign(t *testing.T) {
	m, err := NewMinter("s3cr3t", time.Minute)
	require.NoError(t, err)

	token, _, err := m.Mint("demo@demo.com")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other, err := NewMinter("another", time.Minute)
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestNewMinter(t *testing.T) {
	_, err := NewMinter("", time.Hour)
	assert.Error(t, err)

	m, err := NewMinter("x", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, m.ttl)
}

func TestUnverifiedExpiry_Garbage(t *testing.T) {
	_, ok := UnverifiedExpiry("not-a-token")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = UnverifiedExpiry(noExp)
	assert.False(t, ok)
}

func TestFixedCredential(t *testing.T) {
	plain, err := NewFixedCredential("demo@demo.com", "secret1")
	require.NoError(t, err)
	assert.True(t, plain.Matches("demo@demo.com", "secret1"))
	assert.False(t, plain.Matches("demo@demo.com", "secret2"))
	assert.False(t, plain.Matches("other@demo.com", "secret1"))

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed, err := NewFixedCredential("demo@demo.com", string(hash))
	require.NoError(t, err)
	assert.True(t, hashed.Matches("demo@demo.com", "hunter22"))

	_, err = NewFixedCredential("demo@demo.com", "$2broken")
	assert.Error(t, err)
	_, err = NewFixedCredential("", "x")
	assert.Error(t, err)
}
