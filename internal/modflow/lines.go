package modflow

import "strings"

// lineScanner walks the lines of one deck file, tracking position for error
// reports.
type lineScanner struct {
	lines []string
	pos   int
}

func newLineScanner(data []byte) *lineScanner {
	raw := strings.Split(string(data), "\n")
	// drop a trailing empty line from the final newline, keep interior blanks
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}
	for i, ln := range raw {
		raw[i] = strings.TrimRight(ln, "\r")
	}
	return &lineScanner{lines: raw}
}

func (s *lineScanner) next() (string, bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}
	ln := s.lines[s.pos]
	s.pos++
	return ln, true
}

func (s *lineScanner) peek() (string, bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}
	return s.lines[s.pos], true
}

// comments consumes leading '#' lines.
func (s *lineScanner) comments() []string {
	var out []string
	for {
		ln, ok := s.peek()
		if !ok || !strings.HasPrefix(strings.TrimSpace(ln), "#") {
			return out
		}
		out = append(out, ln)
		s.pos++
	}
}

// rest returns all remaining lines.
func (s *lineScanner) rest() []string {
	out := s.lines[s.pos:]
	s.pos = len(s.lines)
	return out
}

func (s *lineScanner) lineno() int { return s.pos }
