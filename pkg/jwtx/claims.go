// Package jwtx signs and verifies the session tokens handed out at
// registration and login. Tokens are compact JWTs signed with a symmetric
// server secret; nothing is looked up in the store to verify one.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default session token lifetime.
const DefaultSessionTTL = 30 * time.Minute

// Claims are the session-token claims. The account id travels as the
// registered subject.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

// NewSessionClaims builds minimally-correct claims for an account.
func NewSessionClaims(
	accountID, username string,
	isAdmin bool,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		IsAdmin:  isAdmin,
	}
}

// AccountID returns the subject claim.
func (c *Claims) AccountID() string { return c.Subject }
