package jwtx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
)

// Signer is our interface for anything that can sign session claims.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier validates a token and gives you back the claims if it's legit.
// Callers that don't care why a token failed can treat any error as "no
// claims" — malformed, expired and tampered all come back as errors here.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var hmacMethods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// HMACSigner signs and verifies tokens with a shared server secret.
// It implements both Signer and Verifier.
type HMACSigner struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	issuer string
}

// NewHMACSigner builds a signer for the named HMAC algorithm (HS256, HS384
// or HS512). The secret must be non-empty.
func NewHMACSigner(alg string, secret []byte, issuer string) (*HMACSigner, error) {
	method, ok := hmacMethods[strings.ToUpper(alg)]
	if !ok {
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}

	return &HMACSigner{method: method, secret: secret, issuer: issuer}, nil
}

func (s *HMACSigner) Alg() string { return s.method.Alg() }

// Sign takes your claims and turns them into a signed compact JWT string.
func (s *HMACSigner) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Verify checks the signature, expiry and issuer of a token.
func (s *HMACSigner) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, ErrInvalidSig
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))

	switch {
	case err == nil && parsed.Valid:
		// fallthrough to issuer check below
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	default:
		return Claims{}, ErrMalformed
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}
