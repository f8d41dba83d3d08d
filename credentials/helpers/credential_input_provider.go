package helpers

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

type userPasswordInputProvider struct {
	input io.Reader
}

// NewUserPasswordInputProvider returns a CredentialInputProvider which reads the Okta
// username and password from in as newline-separated values.
func NewUserPasswordInputProvider(in io.Reader) *userPasswordInputProvider {
	return &userPasswordInputProvider{input: in}
}

// ReadInput fills in whichever of user and password were not already supplied, prompting
// on os.Stderr for each missing value.  When the input source is an interactive terminal
// the password is read with echo disabled.
func (p *userPasswordInputProvider) ReadInput(user, password string) (string, string, error) {
	var err error

	if len(user) < 1 {
		if user, err = p.prompt("Okta username: "); err != nil {
			return "", "", err
		}
	}

	if len(password) < 1 {
		if password, err = p.promptSecret("Okta password: "); err != nil {
			return "", "", err
		}
	}

	return user, password, nil
}

func (p *userPasswordInputProvider) prompt(msg string) (string, error) {
	_, _ = fmt.Fprint(os.Stderr, msg)

	var val string
	_, err := fmt.Fscanln(p.input, &val)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return val, nil
}

// promptSecret suppresses terminal echo when the input is a tty, otherwise it falls back
// to a plain line read so callers can wire in any io.Reader.
func (p *userPasswordInputProvider) promptSecret(msg string) (string, error) {
	_, _ = fmt.Fprint(os.Stderr, msg)
	defer fmt.Println()

	if f, ok := p.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return string(b), nil
	}

	return p.prompt("")
}
