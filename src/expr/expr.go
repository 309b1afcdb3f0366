// Package expr implements the expression engine (§2-C5, §4.4): collecting
// an expression's tokens off the back of a statement's operand list,
// detecting forward references, and evaluating fully-resolved expressions
// to an integer. Grounded on expression.rs's ExpressionParser.
//
// The original assembler hands the joined expression text to the
// asciimath crate's eval(). No Go package or example in this repo offers
// an equivalent general arithmetic-expression evaluator (the corpus's
// arithmetic needs elsewhere are all fixed-shape bit-field math, not
// free-form expression text), so Evaluate below is a small hand-rolled
// recursive-descent parser over the token slice instead of a borrowed
// library — the one ambient concern in this module without a grounded
// third-party dependency.
package expr

import (
	"fmt"

	"zasm/asmctx"
	"zasm/compiler/token"
)

// Parser collects and evaluates expressions against a shared context.
type Parser struct{}

// New returns an expression Parser.
func New() *Parser { return &Parser{} }

// Collect pops expression-class tokens off the end of toks (§4.4 step 1:
// "pop while expression-class"), substituting ASMPC/`$` with the
// statement-latched asm PC, and reports whether any popped token named a
// label or SIZEOF target not yet defined — i.e. whether evaluation must be
// deferred to pass 2.
//
// toks is expected to hold a statement's remaining tokens in
// reverse-reading order (the convention the whole pass-1 pipeline uses so
// that "pop the next token to process" is a cheap slice-tail pop rather
// than a head-shift); the compile package reverses a line's tokens once
// right after tokenizing it, before any directive or encoder pops from it.
func (p *Parser) Collect(ctx *asmctx.Context, toks *[]token.Token) (expr []token.Token, hasForwardRef bool) {
	for len(*toks) > 0 && last(*toks).IsExpressionClass() {
		n := len(*toks) - 1
		t := (*toks)[n]
		*toks = (*toks)[:n]

		if t.Kind == token.KindOperator && t.Op == token.OpAsmPC {
			t = token.NewNumber(int64(ctx.AsmPC()))
		}
		expr = append(expr, t)

		tail := expr[len(expr)-1]
		switch {
		case tail.Kind == token.KindConstLabel && lower(tail.Text) == "asmpc":
			expr[len(expr)-1] = token.NewNumber(int64(ctx.AsmPC()))
		case tail.Kind == token.KindConstLabel:
			if !ctx.IsConstantDefined(tail.Text) && !ctx.IsLabelDefined(tail.Text) {
				hasForwardRef = true
			}
		case tail.Kind == token.KindSizeOf:
			if _, ok := ctx.GetSizeOf(tail.Text); !ok {
				hasForwardRef = true
			}
		}
	}
	return expr, hasForwardRef
}

// Parse is the top-level entry point used by the instruction encoder and
// directive handlers: it collects an expression off toks and either
// evaluates it immediately or, if it has an unresolved forward reference,
// records a asmctx.ForwardReference (returning 0 as a placeholder value)
// for pass 2 to patch later. offset is the byte offset within the current
// instruction the operand occupies; count is its width in bytes (negative
// count with a forward reference is a pass-1 error, since some forms
// cannot be deferred — e.g. an ORG address or an IF comparison value).
// Grounded on ExpressionParser::parse.
func (p *Parser) Parse(ctx *asmctx.Context, toks *[]token.Token, offset, count int, isRelative bool) (int, bool, error) {
	e, hasForwardRef := p.Collect(ctx, toks)

	if hasForwardRef && count < 0 {
		return 0, false, ctx.Fatalf("expression cannot be resolved yet")
	}
	if hasForwardRef {
		ctx.AddForwardRef(asmctx.ForwardReference{
			IsExpression: true,
			Pc:           ctx.OffsetPC(offset),
			Label:        ctx.LabelContext(),
			Expression:   e,
			IsRelative:   isRelative,
			ByteCount:    count,
			LineNo:       ctx.CurrentLineNumber(),
			FileName:     ctx.CurrentFileName(),
		})
		return 0, true, nil
	}

	n, err := p.Evaluate(ctx, e)
	if err != nil {
		return 0, false, err
	}
	return n, false, nil
}

// Evaluate resolves a fully-known expression (no remaining forward
// references) to its integer value by substituting each ConstLabel/SizeOf
// token with its resolved value and running the result through the
// recursive-descent arithmetic evaluator.
func (p *Parser) Evaluate(ctx *asmctx.Context, e []token.Token) (int, error) {
	resolved := make([]token.Token, 0, len(e))
	for _, t := range e {
		switch t.Kind {
		case token.KindSizeOf:
			size, ok := ctx.GetSizeOf(t.Text)
			if !ok {
				return 0, fmt.Errorf("unknown sizeof target: %s", t.Text)
			}
			resolved = append(resolved, token.NewNumber(int64(size)))
		case token.KindConstLabel:
			if n, ok := ctx.GetConstant(t.Text); ok {
				resolved = append(resolved, token.NewNumber(int64(n)))
			} else if n, ok := ctx.GetLabel(t.Text); ok {
				resolved = append(resolved, token.NewNumber(int64(n)))
			} else {
				return 0, fmt.Errorf("undefined label or constant: %s", t.Text)
			}
		case token.KindNumber, token.KindOperator:
			resolved = append(resolved, t)
		default:
			return 0, fmt.Errorf("token cannot appear in an expression: %s", t.String())
		}
	}
	return evalTokens(resolved)
}

func last(toks []token.Token) token.Token {
	if len(toks) == 0 {
		return token.None()
	}
	return toks[len(toks)-1]
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
