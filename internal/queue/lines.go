package queue

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1024 * 1024

// ReadLines returns the trimmed, non-empty lines of r.
// Lines starting with '#' are comments and skipped.
func ReadLines(r io.Reader) ([]string, error) {
	lines, _, err := readQueue(r)
	return lines, err
}

// readQueue splits r into entries and '#' comment lines, each in file order.
func readQueue(r io.Reader) (entries, comments []string, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			comments = append(comments, line)
		default:
			entries = append(entries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return entries, comments, nil
}
