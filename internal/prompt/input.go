package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when the operator enters nothing.
var ErrNoInput = errors.New("no URL entered")

// ReadURL asks for a single URL on out and reads it from in.
func ReadURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "URL to download: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrNoInput
	}
	return line, nil
}
