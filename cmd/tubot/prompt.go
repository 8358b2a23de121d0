package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// prompter asks for form fields on stdin. Passwords are read without echo
// when stdin is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(os.Stdin), out: out}
}

func (p *prompter) line(label, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	fmt.Fprint(p.out, label)
	v, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && v != "") {
		return "", errors.Wrap(err, "read "+strings.TrimSuffix(label, ": "))
	}
	return strings.TrimSpace(v), nil
}

func (p *prompter) password(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.line(label, "")
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return string(b), nil
}
