package mustache

import "regexp"

// scanner is a cursor over an immutable input string. The cursor only moves
// forward, so any sequence of scans terminates within input-length-bounded
// steps.
type scanner struct {
	src string
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

// eos reports whether the entire input has been consumed.
func (s *scanner) eos() bool {
	return s.pos >= len(s.src)
}

// tail returns the unconsumed remainder of the input.
func (s *scanner) tail() string {
	return s.src[s.pos:]
}

// scan matches re anchored at the cursor. On a match it advances the cursor
// past the matched text and returns it; otherwise it returns "" and leaves
// the cursor unchanged.
func (s *scanner) scan(re *regexp.Regexp) string {
	t := s.tail()
	loc := re.FindStringIndex(t)
	if loc == nil || loc[0] != 0 {
		return ""
	}
	s.pos += loc[1]
	return t[:loc[1]]
}

// scanUntil consumes and returns everything up to, but not including, the
// first match of re. If re never matches, the entire remainder is consumed.
func (s *scanner) scanUntil(re *regexp.Regexp) string {
	t := s.tail()
	loc := re.FindStringIndex(t)
	var match string
	if loc == nil {
		match = t
	} else {
		match = t[:loc[0]]
	}
	s.pos += len(match)
	return match
}
