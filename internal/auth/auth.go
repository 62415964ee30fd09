package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	ie "github.com/voidshard/keel/pkg/errors"
)

const (
	issuer = "keel"

	minSecretLength = 32
)

// timeNow is overridden in tests
var timeNow = time.Now

// Authenticator issues & checks HS256 tokens whose subject is the owner ID
// used for job ownership.
type Authenticator struct {
	secret []byte
}

func New(secret string) (*Authenticator, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("%w jwt secret must be at least %d characters", ie.ErrInvalidArg, minSecretLength)
	}
	return &Authenticator{secret: []byte(secret)}, nil
}

// Token returns a signed token for the subject, valid for ttl.
func (a *Authenticator) Token(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w token subject required", ie.ErrInvalidArg)
	}
	now := timeNow()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Subject validates the token and returns it's subject.
//
// Any failure is reported as ErrUnauthorized.
func (a *Authenticator) Subject(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w no token", ie.ErrUnauthorized)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(timeNow),
	)
	if err != nil {
		return "", fmt.Errorf("%w %v", ie.ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w invalid token", ie.ErrUnauthorized)
	}
	return claims.Subject, nil
}
