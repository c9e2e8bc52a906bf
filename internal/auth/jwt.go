package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window of a locally minted token.
const DefaultTokenTTL = 8 * time.Hour

// Claims is what a minted API token carries: the subject and the email of
// the authenticated identity.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Minter signs API tokens with the secret shared with the API. The secret
// stays on the side that runs the exchange.
type Minter struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewMinter(secret string, ttl time.Duration) (*Minter, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Minter{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Mint returns a signed token for email and the time it expires.
func (m *Minter) Mint(email string) (string, time.Time, error) {
	issued := m.now()
	expires := issued.Add(m.ttl)

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies signature and expiry.
func (m *Minter) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// UnverifiedExpiry reads the exp claim of a token issued by someone else.
// The client has no key to verify it; the value is only informational.
func UnverifiedExpiry(tokenStr string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
