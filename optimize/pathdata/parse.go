// Package pathdata parses, transforms and serializes SVG path data (the "d"
// attribute). Every segment keeps exactly one command, implicit command
// repetitions are expanded during parsing and collapsed again on output.
package pathdata

import (
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2/strconv"
)

// ErrSyntax is returned (wrapped) for malformed path data.
var ErrSyntax = errors.New("malformed path data")

// Segment is a single path command with its parameters. Cmd keeps the
// original letter, lower case means relative coordinates.
type Segment struct {
	Cmd  byte
	Args []float64
}

// Path is a sequence of segments.
type Path struct {
	Segments []Segment
}

// number of parameters for every command
var arity = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1,
	'C': 6, 'S': 4, 'Q': 4, 'T': 2,
	'A': 7, 'Z': 0,
}

// Parse reads path data. Empty (or blank) input produces empty path.
func Parse(d string) (*Path, error) {
	b := []byte(d)
	p := &Path{}

	i := skipSpaces(b, 0)
	if i == len(b) {
		return p, nil
	}
	if b[i] != 'M' && b[i] != 'm' {
		return nil, fmt.Errorf("%w: must start with moveto, got %q at %d", ErrSyntax, b[i], i)
	}

	for i < len(b) {
		cmd := b[i]
		n, ok := arity[toUpper(cmd)]
		if !ok {
			return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrSyntax, cmd, i)
		}
		i = skipSpaces(b, i+1)

		if n == 0 {
			p.Segments = append(p.Segments, Segment{Cmd: cmd})
			continue
		}

		for first := true; ; first = false {
			if i >= len(b) || !isNumberStart(b[i]) {
				if first {
					return nil, fmt.Errorf("%w: command %q has no parameters at %d", ErrSyntax, cmd, i)
				}
				break
			}
			args := make([]float64, n)
			for k := range n {
				if k > 0 {
					i = skipSeparators(b, i)
				}
				if i >= len(b) {
					return nil, fmt.Errorf("%w: command %q is missing parameters at %d", ErrSyntax, cmd, i)
				}
				if toUpper(cmd) == 'A' && (k == 3 || k == 4) {
					// flags may be written without separators: "a1 1 0 00 1 1"
					switch b[i] {
					case '0':
					case '1':
						args[k] = 1
					default:
						return nil, fmt.Errorf("%w: invalid arc flag %q at %d", ErrSyntax, b[i], i)
					}
					i++
					continue
				}
				v, l := strconv.ParseFloat(b[i:])
				if l == 0 {
					return nil, fmt.Errorf("%w: expected number at %d", ErrSyntax, i)
				}
				args[k] = v
				i += l
			}
			p.Segments = append(p.Segments, Segment{Cmd: cmd, Args: args})
			i = skipSeparators(b, i)

			// coordinates following moveto are implicit lineto
			switch cmd {
			case 'M':
				cmd = 'L'
			case 'm':
				cmd = 'l'
			}
		}
	}
	return p, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

// skipSeparators skips whitespace with at most one comma.
func skipSeparators(b []byte, i int) int {
	i = skipSpaces(b, i)
	if i < len(b) && b[i] == ',' {
		i = skipSpaces(b, i+1)
	}
	return i
}

func isNumberStart(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+'
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

func isRelative(c byte) bool {
	return c >= 'a' && c <= 'z'
}
