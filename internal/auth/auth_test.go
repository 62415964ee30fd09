package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	ie "github.com/voidshard/keel/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewShortSecret(t *testing.T) {
	_, err := New("short")
	assert.ErrorIs(t, err, ie.ErrInvalidArg)
}

func TestTokenSubject(t *testing.T) {
	a, err := New(testSecret)
	assert.Nil(t, err)

	other, _ := New("fedcba9876543210fedcba9876543210")

	valid, err := a.Token("alice", time.Hour)
	assert.Nil(t, err)

	expired, err := a.Token("alice", -time.Minute)
	assert.Nil(t, err)

	foreign, err := other.Token("alice", time.Hour)
	assert.Nil(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice", Issuer: issuer}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.Nil(t, err)

	cases := []struct {
		Name      string
		Token     string
		ExpectSub string
		ExpectErr bool
	}{
		{"Valid", valid, "alice", false},
		{"Empty", "", "", true},
		{"Garbage", "not.a.token", "", true},
		{"Expired", expired, "", true},
		{"WrongSecret", foreign, "", true},
		{"NoneAlg", none, "", true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			sub, err := a.Subject(c.Token)

			assert.Equal(t, c.ExpectSub, sub)
			if c.ExpectErr {
				assert.ErrorIs(t, err, ie.ErrUnauthorized)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestTokenNoSubject(t *testing.T) {
	a, _ := New(testSecret)
	_, err := a.Token("", time.Hour)
	assert.ErrorIs(t, err, ie.ErrInvalidArg)
}
