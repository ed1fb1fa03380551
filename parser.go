package casso

import (
	"fmt"
	"strconv"
)

// ParseExpression tokenizes a signed sum of terms, e.g. "10 + 2*a - b",
// into a LinearExpression. Each term is one of: a bare number, number*name,
// name*number, or a bare name. Whitespace is insignificant. Duplicate
// variables are summed. Malformed input, including a variable name that
// uses a reserved prefix (s_, d_, z_), returns a *ParseError.
func ParseExpression(s string) (LinearExpression, error) {
	p := &exprParser{input: s}
	e, err := p.parse()
	if err != nil {
		return LinearExpression{}, err
	}
	return e, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parse() (LinearExpression, error) {
	out := LinearExpression{}

	sign, err := p.leadingSign()
	if err != nil {
		return LinearExpression{}, err
	}
	if err := p.addSignedTerm(&out, sign); err != nil {
		return LinearExpression{}, err
	}

	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			break
		}

		switch p.input[p.pos] {
		case '+':
			sign = 1.0
		case '-':
			sign = -1.0
		default:
			return LinearExpression{}, p.errorf("expected '+' or '-'")
		}
		p.pos++
		p.skipSpace()

		if err := p.addSignedTerm(&out, sign); err != nil {
			return LinearExpression{}, err
		}
	}

	return out, nil
}

// leadingSign consumes an optional sign before the first term.
func (p *exprParser) leadingSign() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, p.errorf("expression is empty")
	}
	switch p.input[p.pos] {
	case '+':
		p.pos++
		p.skipSpace()
		return 1.0, nil
	case '-':
		p.pos++
		p.skipSpace()
		return -1.0, nil
	default:
		return 1.0, nil
	}
}

// addSignedTerm parses one term and folds sign*term into out.
func (p *exprParser) addSignedTerm(out *LinearExpression, sign float64) error {
	constant, name, coeff, ok, err := p.term()
	if err != nil {
		return err
	}
	if !ok {
		return p.errorf("expected a term")
	}

	if name == "" {
		out.constant += sign * constant
	} else {
		out.addTerm(name, sign*coeff)
	}
	return nil
}

// term parses one of: number, number*name, name*number, name. It returns
// either (constant, "", 0, true, nil) for a bare number or
// (0, name, coeff, true, nil) for a (possibly implicit coefficient 1) term.
func (p *exprParser) term() (float64, string, float64, bool, error) {
	start := p.pos

	if p.peekIsDigitOrDot() {
		num, err := p.number()
		if err != nil {
			return 0, "", 0, false, err
		}

		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == '*' {
			p.pos++
			p.skipSpace()
			name, err := p.identifier()
			if err != nil {
				return 0, "", 0, false, err
			}
			return 0, name, num, true, nil
		}

		return num, "", 0, true, nil
	}

	if p.peekIsIdentStart() {
		name, err := p.identifier()
		if err != nil {
			return 0, "", 0, false, err
		}

		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == '*' {
			p.pos++
			p.skipSpace()
			if !p.peekIsDigitOrDot() {
				return 0, "", 0, false, p.errorf("expected a number after '*'")
			}
			num, err := p.number()
			if err != nil {
				return 0, "", 0, false, err
			}
			return 0, name, num, true, nil
		}

		return 0, name, 1.0, true, nil
	}

	p.pos = start
	return 0, "", 0, false, nil
}

func (p *exprParser) number() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if p.pos < len(p.input) && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
		save := p.pos
		p.pos++
		if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
			p.pos++
		}
		digits := p.pos
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
		if p.pos == digits {
			p.pos = save
		}
	}

	lit := p.input[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, p.errorfAt(start, "invalid number %q", lit)
	}
	return v, nil
}

func (p *exprParser) identifier() (string, error) {
	start := p.pos
	if !p.peekIsIdentStart() {
		return "", p.errorf("expected an identifier")
	}
	p.pos++
	for p.pos < len(p.input) && isIdentRune(p.input[p.pos]) {
		p.pos++
	}
	name := p.input[start:p.pos]
	if !IsExternal(name) {
		return "", p.errorfAt(start, "variable %q uses a reserved prefix", name)
	}
	return name, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peekIsDigitOrDot() bool {
	return p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.')
}

func (p *exprParser) peekIsIdentStart() bool {
	return p.pos < len(p.input) && isLetter(p.input[p.pos])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentRune(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '.' || b == '_'
}

func (p *exprParser) errorf(format string, args ...interface{}) error {
	return p.errorfAt(p.pos, format, args...)
}

func (p *exprParser) errorfAt(offset int, format string, args ...interface{}) error {
	return &ParseError{Input: p.input, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
