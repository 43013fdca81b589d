package pathdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Transform rewrites path data translating it by (dx, dy) and scaling by
// scale. Result is re-encoded in relative form with one decimal place
// precision. Order of operations is fixed: translate, scale, convert to
// absolute, round, convert to relative, round again. Second rounding removes
// error accumulated by relative re-encoding.
func Transform(d string, scale, dx, dy float64) (string, error) {
	p, err := Parse(d)
	if err != nil {
		return "", err
	}
	return p.Translate(dx, dy).Scale(scale).Abs().Round(1).Rel().Round(1).String(), nil
}

// iterate calls fn for every segment with current point before the segment,
// then advances current point using segment as it is after fn returns.
func (p *Path) iterate(fn func(s *Segment, index int, x, y float64)) {
	var x, y, startX, startY float64
	for i := range p.Segments {
		s := &p.Segments[i]
		fn(s, i, x, y)

		rel := isRelative(s.Cmd)
		switch toUpper(s.Cmd) {
		case 'M':
			x, y = advance(rel, x, s.Args[0]), advance(rel, y, s.Args[1])
			startX, startY = x, y
		case 'H':
			x = advance(rel, x, s.Args[0])
		case 'V':
			y = advance(rel, y, s.Args[0])
		case 'Z':
			x, y = startX, startY
		default:
			n := len(s.Args)
			x, y = advance(rel, x, s.Args[n-2]), advance(rel, y, s.Args[n-1])
		}
	}
}

func advance(rel bool, cur, v float64) float64 {
	if rel {
		return cur + v
	}
	return v
}

// Abs converts all segments to absolute coordinates.
func (p *Path) Abs() *Path {
	p.iterate(func(s *Segment, _ int, x, y float64) {
		if !isRelative(s.Cmd) {
			return
		}
		s.Cmd = toUpper(s.Cmd)
		switch s.Cmd {
		case 'V':
			s.Args[0] += y
		case 'A':
			s.Args[5] += x
			s.Args[6] += y
		default:
			for i := range s.Args {
				if i%2 == 0 {
					s.Args[i] += x
				} else {
					s.Args[i] += y
				}
			}
		}
	})
	return p
}

// Rel converts all segments to relative coordinates. Very first moveto stays
// absolute.
func (p *Path) Rel() *Path {
	p.iterate(func(s *Segment, index int, x, y float64) {
		if isRelative(s.Cmd) {
			return
		}
		if index == 0 && s.Cmd == 'M' {
			return
		}
		s.Cmd = toLower(s.Cmd)
		switch s.Cmd {
		case 'v':
			s.Args[0] -= y
		case 'a':
			s.Args[5] -= x
			s.Args[6] -= y
		default:
			for i := range s.Args {
				if i%2 == 0 {
					s.Args[i] -= x
				} else {
					s.Args[i] -= y
				}
			}
		}
	})
	return p
}

// Translate moves path by (dx, dy). Relative segments are not affected
// except for the very first moveto, which is always absolute.
func (p *Path) Translate(dx, dy float64) *Path {
	if dx == 0 && dy == 0 {
		return p
	}
	for i := range p.Segments {
		s := &p.Segments[i]
		if i == 0 && s.Cmd == 'm' {
			s.Cmd = 'M'
		}
		if isRelative(s.Cmd) {
			continue
		}
		switch s.Cmd {
		case 'H':
			s.Args[0] += dx
		case 'V':
			s.Args[0] += dy
		case 'A':
			s.Args[5] += dx
			s.Args[6] += dy
		case 'Z':
		default:
			for k := range s.Args {
				if k%2 == 0 {
					s.Args[k] += dx
				} else {
					s.Args[k] += dy
				}
			}
		}
	}
	return p
}

// Scale multiplies all coordinates (absolute and relative) by s, arc radii
// are scaled by |s|. Uniform scale never changes arc sweep direction.
func (p *Path) Scale(s float64) *Path {
	if s == 1 {
		return p
	}
	for i := range p.Segments {
		seg := &p.Segments[i]
		if toUpper(seg.Cmd) == 'A' {
			seg.Args[0] *= math.Abs(s)
			seg.Args[1] *= math.Abs(s)
			seg.Args[5] *= s
			seg.Args[6] *= s
			continue
		}
		for k := range seg.Args {
			seg.Args[k] *= s
		}
	}
	return p
}

// Round rounds coordinates to the given number of decimal places. Rounding
// error of relative segment end points is carried into the next segment so
// the contour does not drift, on closepath error is reset to the one of the
// contour start.
func (p *Path) Round(digits int) *Path {
	var (
		deltaX, deltaY           float64
		startDeltaX, startDeltaY float64
	)
	for i := range p.Segments {
		s := &p.Segments[i]
		rel := isRelative(s.Cmd)
		switch toUpper(s.Cmd) {
		case 'H':
			if rel {
				s.Args[0] += deltaX
			}
			deltaX = s.Args[0] - round(s.Args[0], digits)
			s.Args[0] = round(s.Args[0], digits)
		case 'V':
			if rel {
				s.Args[0] += deltaY
			}
			deltaY = s.Args[0] - round(s.Args[0], digits)
			s.Args[0] = round(s.Args[0], digits)
		case 'Z':
			deltaX, deltaY = startDeltaX, startDeltaY
		case 'M':
			if rel {
				s.Args[0] += deltaX
				s.Args[1] += deltaY
			}
			deltaX = s.Args[0] - round(s.Args[0], digits)
			deltaY = s.Args[1] - round(s.Args[1], digits)
			startDeltaX, startDeltaY = deltaX, deltaY
			s.Args[0] = round(s.Args[0], digits)
			s.Args[1] = round(s.Args[1], digits)
		case 'A':
			if rel {
				s.Args[5] += deltaX
				s.Args[6] += deltaY
			}
			deltaX = s.Args[5] - round(s.Args[5], digits)
			deltaY = s.Args[6] - round(s.Args[6], digits)
			s.Args[0] = round(s.Args[0], digits)
			s.Args[1] = round(s.Args[1], digits)
			// rotation needs better precision
			s.Args[2] = round(s.Args[2], digits+2)
			s.Args[5] = round(s.Args[5], digits)
			s.Args[6] = round(s.Args[6], digits)
		default:
			n := len(s.Args)
			if rel {
				s.Args[n-2] += deltaX
				s.Args[n-1] += deltaY
			}
			deltaX = s.Args[n-2] - round(s.Args[n-2], digits)
			deltaY = s.Args[n-1] - round(s.Args[n-1], digits)
			for k := range s.Args {
				s.Args[k] = round(s.Args[k], digits)
			}
		}
	}
	return p
}

// String serializes path in compact form: repeated commands (other than
// moveto) are omitted, negative numbers need no separator.
func (p *Path) String() string {
	var (
		b       strings.Builder
		prevCmd byte
	)
	for _, s := range p.Segments {
		skipSpace := false
		if s.Cmd != prevCmd || s.Cmd == 'm' || s.Cmd == 'M' {
			// some importers need space between "z" and "m"
			if s.Cmd == 'm' && prevCmd == 'z' {
				b.WriteByte(' ')
			}
			b.WriteByte(s.Cmd)
		} else {
			skipSpace = true
		}
		for k, v := range s.Args {
			if (k > 0 || skipSpace) && v >= 0 {
				b.WriteByte(' ')
			}
			b.WriteString(FormatNumber(v))
		}
		prevCmd = s.Cmd
	}
	return b.String()
}

// GoString is used by %#v and debug dumps.
func (s Segment) GoString() string {
	return fmt.Sprintf("%c%v", s.Cmd, s.Args)
}

// FormatNumber returns shortest decimal representation of v, negative zero
// is printed as "0".
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	r := math.Round(v*pow) / pow
	if r == 0 {
		// avoid "-0"
		return 0
	}
	return r
}
