package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidID(t *testing.T) {
	cases := []struct {
		Name   string
		Given  string
		Expect bool
	}{
		{"Empty", "", false},
		{"Garbage", "not-an-id", false},
		{"Braced", "{" + "6ba7b810-9dad-11d1-80b4-00c04fd430c8" + "}", false},
		{"URN", "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"Valid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"Random", NewRandomID(), true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, IsValidID(c.Given))
		})
	}
}
