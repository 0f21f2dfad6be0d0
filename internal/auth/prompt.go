package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptToken asks for a token on out and reads it from in. Input is not
// echoed when in is a terminal.
func PromptToken(in *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, "API token: ")

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return finishPrompt(string(b))
	}
	return readToken(in)
}

func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read token: %w", err)
	}
	return finishPrompt(line)
}

func finishPrompt(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrNoToken
	}
	return s, nil
}
