package tinyServer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Method string

const (
	GET  Method = "GET"
	HEAD Method = "HEAD"
)

var implementedMethods = map[Method]struct{}{GET: {}, HEAD: {}}

var ErrMalformedRequestLine = errors.New("malformed request line")

type Request struct {
	Method Method
	Target string
}

// ParseRequestLine takes the first two whitespace separated tokens of line.
// The method is upper-cased and the target lower-cased; anything after the
// target is ignored.
func ParseRequestLine(line string) (*Request, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, line)
	}

	return &Request{
		Method: Method(strings.ToUpper(fields[0])),
		Target: strings.ToLower(fields[1]),
	}, nil
}

func readRequestLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		// a final unterminated line still counts, an empty stream does not
		if !errors.Is(err, io.EOF) || line == "" {
			return "", fmt.Errorf("failed to read request line: %w", err)
		}
	}

	return strings.TrimRight(line, "\r\n"), nil
}
