package call

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_ƒ]\w*$`)

type parseOptions struct {
	strict bool
}

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

// WithStrictQuoting rejects bare identifiers as arguments instead of
// treating them as strings.
func WithStrictQuoting() ParseOption {
	return func(o *parseOptions) {
		o.strict = true
	}
}

type parser struct {
	src  []rune
	expr string
	pos  int
	opts parseOptions
}

// Parse builds the syntax tree of expr.
func Parse(expr string, opts ...ParseOption) (Node, error) {
	p := &parser{src: []rune(expr), expr: expr}
	for _, opt := range opts {
		opt(&p.opts)
	}
	n, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.more() {
		return nil, p.fail(fmt.Errorf("%w: %q", ErrTrailingInput, string(p.src[p.pos:])))
	}
	return n, nil
}

func (p *parser) fail(err error) error {
	return &SyntaxError{Expression: p.expr, Pos: p.pos, Err: err}
}

func (p *parser) more() bool {
	return p.pos < len(p.src)
}

func (p *parser) peek() rune {
	if !p.more() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.more() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) parseExpression() (Node, error) {
	tok, err := p.readToken()
	if err != nil {
		return nil, err
	}
	switch {
	case tok == "true" || tok == "false" || tok == "null":
		return &Literal{Raw: tok}, nil
	case identPattern.MatchString(tok):
		p.skipSpace()
		if p.peek() != '(' {
			if p.opts.strict {
				return nil, p.fail(fmt.Errorf("%w: expected '(' after function name %s", ErrExpectedParen, tok))
			}
			return &Literal{Raw: "'" + tok + "'"}, nil
		}
		p.pos++
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.fail(fmt.Errorf("%w: expected ')' to close call to %s", ErrExpectedParen, tok))
		}
		p.pos++
		return &FunctionCall{Name: tok, Args: args}, nil
	}
	return &Literal{Raw: tok}, nil
}

func (p *parser) parseArguments() ([]Node, error) {
	args := []Node{}
	for {
		p.skipSpace()
		if !p.more() || p.peek() == ')' {
			return args, nil
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
		}
	}
}

func (p *parser) readToken() (string, error) {
	p.skipSpace()
	if c := p.peek(); c == '(' || c == ')' {
		return "", p.fail(ErrUnexpectedParen)
	}
	start := p.pos
	if err := p.skipGroup(); err != nil {
		return "", err
	}
	for p.more() {
		c := p.src[p.pos]
		if unicode.IsSpace(c) || c == '(' || c == ')' || c == ',' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", p.fail(ErrEmptyToken)
	}
	return string(p.src[start:p.pos]), nil
}

// skipGroup advances over a quoted string, array or object, honoring
// nested groups. It stops on the closing symbol of the outermost group.
func (p *parser) skipGroup() error {
	if !isGroupBegin(p.peek()) {
		return nil
	}
	open := []rune{p.peek()}
	for p.more() && len(open) > 0 {
		begin := open[len(open)-1]
		p.pos++
		for p.more() {
			c := p.src[p.pos]
			if c == groupEnd(begin) {
				open = open[:len(open)-1]
				break
			}
			if isGroupBegin(c) {
				open = append(open, c)
				break
			}
			p.pos++
		}
	}
	if len(open) > 0 {
		quoted := make([]string, len(open))
		for i, r := range open {
			quoted[i] = "'" + string(r) + "'"
		}
		return p.fail(fmt.Errorf("%w: [%s]", ErrUnmatchedGroup, strings.Join(quoted, ",")))
	}
	return nil
}

func isGroupBegin(c rune) bool {
	return c == '\'' || c == '"' || c == '[' || c == '{'
}

func groupEnd(begin rune) rune {
	switch begin {
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return begin
}
