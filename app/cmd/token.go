package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Semior001/nytsearch/app/rest"
)

// Token is a command to issue a bearer token for a reader.
type Token struct {
	Email  string        `long:"email" env:"EMAIL" required:"true" description:"email of the reader"`
	Name   string        `long:"name" env:"NAME" description:"display name of the reader"`
	TTL    time.Duration `long:"ttl" env:"TTL" default:"720h" description:"token lifetime"`
	Secret string        `long:"secret" env:"AUTH_SECRET" required:"true" description:"secret to sign tokens"`

	out io.Writer
}

// Execute runs the command.
func (t Token) Execute(_ []string) error {
	token, err := rest.Auth{Secret: t.Secret}.Token(rest.User{Email: t.Email, Name: t.Name}, t.TTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	out := t.out
	if out == nil {
		out = os.Stdout
	}

	if _, err = fmt.Fprintln(out, token); err != nil {
		return fmt.Errorf("write token: %w", err)
	}

	return nil
}
