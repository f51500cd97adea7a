package expression

import (
	"fmt"
	"regexp"
)

// Token is one lexical element of an expression.
type Token struct {
	Text     string
	Operator bool
}

var (
	tokenPattern = regexp.MustCompile(`(?:'|")[^'"]*(?:'|")|true|false|Infinity|-Infinity|-*\d+(?:\.\d*)*` +
		`|\+|-|\*|/|\^|\(|\)|\|\||&&|==|!=|!|>=|<=|>|<|\?|:`)
	operandPattern = regexp.MustCompile(`^(?:(?:'|")[^'"]*(?:'|")|-*\d+(?:\.\d*)*|true|false|Infinity|-Infinity)$`)
)

// Tokenize splits expr into operands, operators and parentheses. Characters
// that form no token are skipped.
func Tokenize(expr string) []Token {
	raw := tokenPattern.FindAllString(expr, -1)
	tokens := make([]Token, 0, len(raw))
	for _, text := range raw {
		if len(text) > 1 && text[0] == '-' && text[1] != '-' && followsOperand(tokens) {
			tokens = append(tokens, Token{Text: "-", Operator: true}, Token{Text: text[1:]})
			continue
		}
		tokens = append(tokens, Token{Text: text, Operator: !operandPattern.MatchString(text)})
	}
	return tokens
}

func followsOperand(tokens []Token) bool {
	if len(tokens) == 0 {
		return false
	}
	last := tokens[len(tokens)-1]
	return !last.Operator || last.Text == ")"
}

// ToPostfix converts expr to postfix order.
func ToPostfix(expr string) ([]Token, error) {
	out, err := toPostfix(Tokenize(expr))
	if err != nil {
		return nil, &Error{Expression: expr, Err: err}
	}
	return out, nil
}

func toPostfix(tokens []Token) ([]Token, error) {
	if len(tokens) == 0 {
		return nil, ErrEmpty
	}
	var out []Token
	var stack []string
	top := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}
	pop := func() string {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return t
	}
	emit := func(op string) {
		out = append(out, Token{Text: op, Operator: true})
	}

	for _, tok := range tokens {
		switch {
		case !tok.Operator:
			out = append(out, tok)
		case tok.Text == "(":
			stack = append(stack, "(")
		case tok.Text == ")":
			for top() != "(" {
				if len(stack) == 0 {
					return nil, fmt.Errorf("%w: missing open parenthesis", ErrParenthesis)
				}
				if top() == "?" {
					return nil, fmt.Errorf("%w: missing ternary : symbol", ErrTernaryMismatch)
				}
				emit(pop())
			}
			pop()
		case tok.Text == "?":
			// Every operator binds tighter than the ternary, so the
			// condition is complete once "?" is seen.
			for t := top(); t != "" && t != "(" && t != "?" && t != ternary; t = top() {
				emit(pop())
			}
			stack = append(stack, "?")
		case tok.Text == ":":
			for top() != "?" {
				if t := top(); t == "" || t == "(" {
					return nil, fmt.Errorf("%w: missing ternary ? symbol", ErrTernaryMismatch)
				}
				emit(pop())
			}
			pop()
			stack = append(stack, ternary)
		default:
			incoming, ok := operators[tok.Text]
			if !ok {
				return nil, fmt.Errorf("%w: unknown operator %s", ErrMalformed, tok.Text)
			}
			for {
				t := top()
				if t == "" || t == "(" || t == "?" {
					break
				}
				current := operators[t]
				if current.rank < incoming.rank || (current.rank == incoming.rank && incoming.assoc == left) {
					emit(pop())
					continue
				}
				break
			}
			stack = append(stack, tok.Text)
		}
	}
	for len(stack) > 0 {
		switch op := pop(); op {
		case "(":
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrParenthesis)
		case "?":
			return nil, fmt.Errorf("%w: missing ternary : symbol", ErrTernaryMismatch)
		default:
			emit(op)
		}
	}
	return out, nil
}

// Evaluate computes expr. The result is a float64, a bool, or a string with
// its quotes removed.
func Evaluate(expr string) (any, error) {
	v, err := evaluate(Tokenize(expr))
	if err != nil {
		return nil, &Error{Expression: expr, Err: err}
	}
	return v, nil
}

func evaluate(tokens []Token) (any, error) {
	postfix, err := toPostfix(tokens)
	if err != nil {
		return nil, err
	}
	var stack []any
	for _, tok := range postfix {
		if !tok.Operator {
			stack = append(stack, tok.Text)
			continue
		}
		op := operators[tok.Text]
		if len(stack) < op.nargs {
			return nil, fmt.Errorf("%w %s", ErrArity, tok.Text)
		}
		args := stack[len(stack)-op.nargs:]
		result, err := op.apply(args)
		if err != nil {
			return nil, err
		}
		stack = append(stack[:len(stack)-op.nargs], result)
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("%w with size %d", ErrMalformed, len(stack))
	}
	result, err := toOperand(stack[0])
	if err != nil {
		return nil, err
	}
	if s, ok := result.(string); ok {
		return unquote(s), nil
	}
	return result, nil
}
