package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// FixedCredential is the single configured identity accepted by a local
// exchange. It is a stand-in authority, not a user database.
type FixedCredential struct {
	email        string
	passwordHash []byte
}

// NewFixedCredential accepts a plain password or a bcrypt hash (anything
// starting with "$2").
func NewFixedCredential(email, password string) (*FixedCredential, error) {
	if email == "" || password == "" {
		return nil, errors.New("admin email and password must both be set")
	}

	if strings.HasPrefix(password, "$2") {
		if _, err := bcrypt.Cost([]byte(password)); err != nil {
			return nil, fmt.Errorf("invalid bcrypt hash for admin password: %w", err)
		}
		return &FixedCredential{email: email, passwordHash: []byte(password)}, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &FixedCredential{email: email, passwordHash: hashed}, nil
}

// Matches compares the email exactly and the password against the hash.
func (c *FixedCredential) Matches(email, password string) bool {
	if email != c.email {
		return false
	}
	return bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
}
