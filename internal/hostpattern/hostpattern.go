// Package hostpattern expands the host part of an inventory host definition.
//
// A pattern is a host name, optionally followed by ":port", that may contain
// bracketed ranges:
//
//	web[01:03].example.com  -> web01, web02, web03
//	db-[a:c]                -> db-a, db-b, db-c
//	node[0:8:4]             -> node0, node4, node8
//
// A numeric range whose start has a leading zero pads every value to the
// start's width; start and end must then have the same width. Brackets
// without a colon are copied through literally.
package hostpattern

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidRange reports a malformed bracketed range.
var ErrInvalidRange = errors.New("invalid host range")

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	bracketedIPv6 = regexp.MustCompile(`^\[([0-9a-fA-F.]*:[0-9a-fA-F.]*:[0-9a-fA-F:.]*)\](?::([0-9]+))?$`)
	trailingPort  = regexp.MustCompile(`^(.+):([0-9]+)$`)
)

// Pattern is a parsed host pattern.
type Pattern struct {
	// Host is the host part, possibly containing ranges.
	Host string
	// Port is the explicit port, or 0 when none was given.
	Port int
}

// Parse splits an optional ":port" suffix off text. Bare IPv6 addresses are
// kept whole; an IPv6 address with a port must be bracketed ("[::1]:22").
// Bracketed text with two or more colons is read as an IPv6 address, not as
// a range.
func Parse(text string) (Pattern, error) {
	if text == "" {
		return Pattern{}, errors.New("empty host pattern")
	}

	if m := bracketedIPv6.FindStringSubmatch(text); m != nil {
		if m[2] == "" {
			return Pattern{Host: m[1]}, nil
		}
		port, err := parsePort(m[2])
		if err != nil {
			return Pattern{}, err
		}
		return Pattern{Host: m[1], Port: port}, nil
	}
	if strings.Count(text, "[") != strings.Count(text, "]") {
		return Pattern{}, fmt.Errorf("unbalanced brackets in host pattern %q", text)
	}

	if m := trailingPort.FindStringSubmatch(text); m != nil && outsideBrackets(text, len(m[1])) {
		// A bare IPv6 address such as fe80::1 also ends in ":digits".
		if strings.Count(stripBrackets(m[1]), ":") == 0 {
			port, err := parsePort(m[2])
			if err != nil {
				return Pattern{}, err
			}
			return Pattern{Host: m[1], Port: port}, nil
		}
	}

	return Pattern{Host: text}, nil
}

// Expand returns every host name matched by the ranges in pattern, in order.
// A pattern without ranges yields itself.
func Expand(pattern string) ([]string, error) {
	start, end, ok := findRange(pattern)
	if !ok {
		return []string{pattern}, nil
	}

	head, body, tail := pattern[:start], pattern[start+1:end], pattern[end+1:]
	values, err := expandRange(body)
	if err != nil {
		return nil, fmt.Errorf("%w %q in %q: %v", ErrInvalidRange, "["+body+"]", pattern, err)
	}

	rest, err := Expand(tail)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(values)*len(rest))
	for _, v := range values {
		for _, r := range rest {
			out = append(out, head+v+r)
		}
	}
	return out, nil
}

// ParseAndExpand combines Parse and Expand.
func ParseAndExpand(text string) ([]string, int, error) {
	p, err := Parse(text)
	if err != nil {
		return nil, 0, err
	}
	hosts, err := Expand(p.Host)
	if err != nil {
		return nil, 0, err
	}
	return hosts, p.Port, nil
}

// findRange locates the first bracket pair containing a colon.
func findRange(s string) (int, int, bool) {
	offset := 0
	for {
		open := strings.IndexByte(s[offset:], '[')
		if open < 0 {
			return 0, 0, false
		}
		open += offset
		closing := strings.IndexByte(s[open:], ']')
		if closing < 0 {
			return 0, 0, false
		}
		closing += open
		if strings.Contains(s[open:closing], ":") {
			return open, closing, true
		}
		offset = closing + 1
	}
}

func expandRange(body string) ([]string, error) {
	parts := strings.Split(body, ":")
	if len(parts) > 3 {
		return nil, errors.New("too many fields")
	}
	beg, end := parts[0], parts[1]
	step := 1
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("step %q must be a positive integer", parts[2])
		}
		step = n
	}
	if beg == "" {
		beg = "0"
	}
	if end == "" {
		return nil, errors.New("range end value missing")
	}

	if len(beg) == 1 && len(end) == 1 && isLetter(beg[0]) && isLetter(end[0]) {
		i, j := strings.IndexByte(letters, beg[0]), strings.IndexByte(letters, end[0])
		if i > j {
			return nil, errors.New("range must have begin <= end")
		}
		var out []string
		for k := i; k <= j; k += step {
			out = append(out, string(letters[k]))
		}
		return out, nil
	}

	width := 0
	if len(beg) > 1 && beg[0] == '0' {
		width = len(beg)
		if len(end) != width {
			return nil, errors.New("range must specify equal-length begin and end formats")
		}
	}
	i, err := strconv.Atoi(beg)
	if err != nil || i < 0 {
		return nil, fmt.Errorf("range begin %q is not a number or letter", beg)
	}
	j, err := strconv.Atoi(end)
	if err != nil || j < 0 {
		return nil, fmt.Errorf("range end %q is not a number or letter", end)
	}
	if i > j {
		return nil, errors.New("range must have begin <= end")
	}

	out := make([]string, 0, (j-i)/step+1)
	for k := i; k <= j; k += step {
		out = append(out, fmt.Sprintf("%0*d", width, k))
	}
	return out, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}

// outsideBrackets reports whether position pos of s is not inside a bracket
// pair.
func outsideBrackets(s string, pos int) bool {
	depth := 0
	for i := 0; i < pos && i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		}
	}
	return depth == 0
}

// stripBrackets removes bracketed sections so that range colons are not
// mistaken for address colons.
func stripBrackets(s string) string {
	var sb strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '[':
			depth++
		case c == ']':
			depth--
		case depth == 0:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
