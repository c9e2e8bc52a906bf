package models

import "time"

// Session is the authenticated identity plus the bearer token used against
// the API. ExpiresAt is informational; the client never enforces it.
type Session struct {
	UserEmail string    `json:"user_email"`
	APIToken  string    `json:"api_token,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (s Session) Authenticated() bool {
	return s.APIToken != ""
}

// Token is the login response of an API that issues its own tokens.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
