package expr

import (
	"fmt"

	"zasm/compiler/token"
)

// evalTokens evaluates a fully-resolved (Number/Operator only) token slice
// in natural left-to-right reading order, via a small recursive-descent
// parser: unary minus binds tightest, then `* /`, then `+ -`, then
// `<< >>`, then `& |`, with `(...)` grouping overriding all of it. This
// mirrors the precedence asciimath::eval gave the original's joined
// expression text; there is no Go/corpus arithmetic-expression library to
// borrow here (see the package doc comment).
type evaluator struct {
	toks []token.Token
	pos  int
}

func evalTokens(toks []token.Token) (int, error) {
	e := &evaluator{toks: toks}
	v, err := e.parseBitwise()
	if err != nil {
		return 0, err
	}
	if e.pos != len(e.toks) {
		return 0, fmt.Errorf("unexpected token in expression: %s", e.peek().String())
	}
	return v, nil
}

func (e *evaluator) peek() token.Token {
	if e.pos >= len(e.toks) {
		return token.None()
	}
	return e.toks[e.pos]
}

func (e *evaluator) isOp(op token.Op) bool {
	t := e.peek()
	return t.Kind == token.KindOperator && t.Op == op
}

func (e *evaluator) next() token.Token {
	t := e.peek()
	e.pos++
	return t
}

// parseBitwise: shift (`&`|`|`) shift ...
func (e *evaluator) parseBitwise() (int, error) {
	v, err := e.parseShift()
	if err != nil {
		return 0, err
	}
	for e.isOp(token.OpAmpersand) || e.isOp(token.OpPipe) {
		op := e.next().Op
		rhs, err := e.parseShift()
		if err != nil {
			return 0, err
		}
		if op == token.OpAmpersand {
			v &= rhs
		} else {
			v |= rhs
		}
	}
	return v, nil
}

// parseShift: additive (`<<`|`>>`) additive ...
func (e *evaluator) parseShift() (int, error) {
	v, err := e.parseAdditive()
	if err != nil {
		return 0, err
	}
	for e.isOp(token.OpShl) || e.isOp(token.OpShr) {
		op := e.next().Op
		rhs, err := e.parseAdditive()
		if err != nil {
			return 0, err
		}
		if op == token.OpShl {
			v <<= uint(rhs)
		} else {
			v >>= uint(rhs)
		}
	}
	return v, nil
}

// parseAdditive: term (`+`|`-`) term ...
func (e *evaluator) parseAdditive() (int, error) {
	v, err := e.parseTerm()
	if err != nil {
		return 0, err
	}
	for e.isOp(token.OpAddOp) || e.isOp(token.OpSubOp) {
		op := e.next().Op
		rhs, err := e.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == token.OpAddOp {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

// parseTerm: unary (`*`|`/`) unary ...
func (e *evaluator) parseTerm() (int, error) {
	v, err := e.parseUnary()
	if err != nil {
		return 0, err
	}
	for e.isOp(token.OpMulOp) || e.isOp(token.OpDivOp) {
		op := e.next().Op
		rhs, err := e.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == token.OpMulOp {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero in expression")
			}
			v /= rhs
		}
	}
	return v, nil
}

// parseUnary: (`-`)? primary
func (e *evaluator) parseUnary() (int, error) {
	if e.isOp(token.OpSubOp) {
		e.next()
		v, err := e.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	if e.isOp(token.OpAddOp) {
		e.next()
		return e.parseUnary()
	}
	return e.parsePrimary()
}

// parsePrimary: Number | `(` bitwise `)`
func (e *evaluator) parsePrimary() (int, error) {
	t := e.peek()
	switch {
	case t.Kind == token.KindNumber:
		e.next()
		return int(t.Number), nil
	case t.Kind == token.KindOperator && t.Op == token.OpLParen:
		e.next()
		v, err := e.parseBitwise()
		if err != nil {
			return 0, err
		}
		if !e.isOp(token.OpRParen) {
			return 0, fmt.Errorf("expected closing parenthesis in expression")
		}
		e.next()
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected token in expression: %s", t.String())
	}
}
