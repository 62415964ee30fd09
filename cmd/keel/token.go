package main

import (
	"fmt"
	"time"

	"github.com/voidshard/keel/internal/auth"
)

const (
	docToken = `Issue a client token for an owner`
)

type optsToken struct {
	optsAuth

	Owner string        `long:"owner" env:"OWNER" description:"Owner the token is issued for" required:"true"`
	TTL   time.Duration `long:"ttl" env:"TOKEN_TTL" description:"How long the token is valid" default:"24h"`
}

func (c *optsToken) Execute(args []string) error {
	a, err := auth.New(c.JWTSecret)
	if err != nil {
		return err
	}

	tok, err := a.Token(c.Owner, c.TTL)
	if err != nil {
		return err
	}

	fmt.Println(tok)
	return nil
}
