package tag

import (
	"slices"
	"strings"
)

const (
	// Open starts a tag.
	Open = "{{"
	// Close ends a tag.
	Close = "}}"
)

// Match is one tag found in the scanned text.
type Match struct {
	Text  string // full tag text including markers
	Key   string // text between the markers, untrimmed
	Start int    // byte offset of the opening marker
	End   int    // byte offset just past the closing marker
}

// Enclosure is an open/close symbol pair tracked by the scanner. Both
// symbols must be ASCII.
type Enclosure struct {
	Open  rune
	Close rune
}

// DefaultEnclosures tracks single curly braces.
var DefaultEnclosures = []Enclosure{{Open: '{', Close: '}'}}

type options struct {
	track      bool
	enclosures []Enclosure
}

// Option configures a Scanner or Replace.
type Option func(*options)

// WithEnclosureTracking turns single-symbol enclosure tracking on or off.
func WithEnclosureTracking(on bool) Option {
	return func(o *options) {
		o.track = on
	}
}

// WithEnclosures replaces the tracked symbol pairs.
func WithEnclosures(pairs ...Enclosure) Option {
	return func(o *options) {
		o.enclosures = slices.Clone(pairs)
	}
}

func buildOptions(opts []Option) options {
	o := options{enclosures: DefaultEnclosures}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Scanner walks a string and yields tags one at a time.
type Scanner struct {
	src     string
	opts    options
	pos     int
	pending []rune
	err     error
	done    bool
}

// NewScanner creates a scanner over s.
func NewScanner(s string, opts ...Option) *Scanner {
	return &Scanner{src: s, opts: buildOptions(opts)}
}

// Next returns the next tag. It returns false once the text is exhausted or
// the scan failed; check Err afterwards.
func (s *Scanner) Next() (Match, bool) {
	if s.done {
		return Match{}, false
	}
	start := -1
	for s.pos < len(s.src) {
		switch {
		case strings.HasPrefix(s.src[s.pos:], Open):
			start = s.pos
			s.pos += len(Open)
		case len(s.pending) == 0 && strings.HasPrefix(s.src[s.pos:], Close):
			s.pos += len(Close)
			if start < 0 {
				continue
			}
			key := s.src[start+len(Open) : s.pos-len(Close)]
			return Match{Text: Open + key + Close, Key: key, Start: start, End: s.pos}, true
		default:
			s.track()
		}
	}
	s.done = true
	if s.opts.track && len(s.pending) > 0 {
		s.err = &UnbalancedError{Missing: slices.Clone(s.pending)}
	}
	return Match{}, false
}

// track consumes one character, updating the enclosure stack.
func (s *Scanner) track() {
	c := s.src[s.pos]
	s.pos++
	if !s.opts.track {
		return
	}
	r := rune(c)
	for _, e := range s.opts.enclosures {
		if r == e.Open {
			s.pending = append(s.pending, e.Close)
			return
		}
	}
	if n := len(s.pending); n > 0 && s.pending[n-1] == r {
		s.pending = s.pending[:n-1]
	}
}

// Err returns the error that ended the scan, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Scan returns every tag in s.
func Scan(s string, opts ...Option) ([]Match, error) {
	sc := NewScanner(s, opts...)
	var matches []Match
	for {
		m, ok := sc.Next()
		if !ok {
			break
		}
		matches = append(matches, m)
	}
	return matches, sc.Err()
}

// Contains reports whether s holds at least one tag.
func Contains(s string) bool {
	_, ok := NewScanner(s).Next()
	return ok
}

// Wrap renders key as a tag.
func Wrap(key string) string {
	return Open + key + Close
}
