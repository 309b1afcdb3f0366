package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zasm/asmctx"
	"zasm/compiler/token"
)

func newTestContext() *asmctx.Context {
	ctx := asmctx.NewContext()
	ctx.Enter("test.asm", nil)
	return ctx
}

// reversed builds a token slice in the reverse-reading-order this
// package expects callers to hand it.
func reversed(toks ...token.Token) []token.Token {
	out := make([]token.Token, len(toks))
	for i, t := range toks {
		out[len(toks)-1-i] = t
	}
	return out
}

func TestEvaluateArithmeticPrecedence(t *testing.T) {
	ctx := newTestContext()
	p := New()

	// 2 + 3 * 4 == 14
	e := []token.Token{
		token.NewNumber(2), token.NewOperator(token.OpAddOp),
		token.NewNumber(3), token.NewOperator(token.OpMulOp), token.NewNumber(4),
	}
	n, err := p.Evaluate(ctx, e)
	assert.NoError(t, err)
	assert.Equal(t, 14, n)
}

func TestEvaluateParenthesesOverridePrecedence(t *testing.T) {
	ctx := newTestContext()
	p := New()

	// (2 + 3) * 4 == 20
	e := []token.Token{
		token.NewOperator(token.OpLParen),
		token.NewNumber(2), token.NewOperator(token.OpAddOp), token.NewNumber(3),
		token.NewOperator(token.OpRParen),
		token.NewOperator(token.OpMulOp), token.NewNumber(4),
	}
	n, err := p.Evaluate(ctx, e)
	assert.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestEvaluateDivisionByZeroIsError(t *testing.T) {
	ctx := newTestContext()
	p := New()
	e := []token.Token{
		token.NewNumber(1), token.NewOperator(token.OpDivOp), token.NewNumber(0),
	}
	_, err := p.Evaluate(ctx, e)
	assert.Error(t, err)
}

func TestEvaluateResolvesConstantsAndLabels(t *testing.T) {
	ctx := newTestContext()
	assert.NoError(t, ctx.AddConstant("WIDTH", 8))
	ctx.SetPC(0x8000)
	assert.NoError(t, ctx.AddLabel("START", false))

	p := New()
	e := []token.Token{
		token.NewConstLabel("START"), token.NewOperator(token.OpAddOp), token.NewConstLabel("WIDTH"),
	}
	n, err := p.Evaluate(ctx, e)
	assert.NoError(t, err)
	assert.Equal(t, 0x8008, n)
}

func TestEvaluateUndefinedLabelIsError(t *testing.T) {
	ctx := newTestContext()
	p := New()
	_, err := p.Evaluate(ctx, []token.Token{token.NewConstLabel("NOPE")})
	assert.Error(t, err)
}

func TestParseResolvedExpressionReturnsValueImmediately(t *testing.T) {
	ctx := newTestContext()
	assert.NoError(t, ctx.AddConstant("N", 5))
	p := New()

	toks := reversed(token.NewConstLabel("N"), token.NewOperator(token.OpAddOp), token.NewNumber(1))
	n, deferred, err := p.Parse(ctx, &toks, 0, 1, false)
	assert.NoError(t, err)
	assert.False(t, deferred)
	assert.Equal(t, 6, n)
	assert.Empty(t, toks)
}

func TestParseForwardReferenceIsDeferred(t *testing.T) {
	ctx := newTestContext()
	p := New()

	toks := reversed(token.NewConstLabel("NOTYET"))
	n, deferred, err := p.Parse(ctx, &toks, 2, 2, false)
	assert.NoError(t, err)
	assert.True(t, deferred)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, ctx.ForwardRefCount())

	fw, ok := ctx.NextForwardRef()
	assert.True(t, ok)
	assert.True(t, fw.IsExpression)
	assert.Equal(t, 2, fw.ByteCount)
}

func TestParseForwardReferenceWithNegativeCountIsFatal(t *testing.T) {
	ctx := newTestContext()
	p := New()

	toks := reversed(token.NewConstLabel("NOTYET"))
	_, _, err := p.Parse(ctx, &toks, 0, -1, false)
	assert.Error(t, err)
}

func TestParseSnapshotsCurrentLabelContextIntoForwardReference(t *testing.T) {
	ctx := newTestContext()
	ctx.SetPC(0)
	assert.NoError(t, ctx.AddLabel("LOOP", false))
	p := New()

	toks := reversed(token.NewConstLabel(".NOTYET"))
	_, deferred, err := p.Parse(ctx, &toks, 0, 1, false)
	assert.NoError(t, err)
	assert.True(t, deferred)

	fw, ok := ctx.NextForwardRef()
	assert.True(t, ok)
	assert.Equal(t, "LOOP", fw.Label)
}

func TestCollectSubstitutesAsmPCForDollar(t *testing.T) {
	ctx := newTestContext()
	ctx.SetPC(0x4000)
	ctx.InitAsmPC()
	p := New()

	toks := reversed(token.NewOperator(token.OpAsmPC))
	e, hasForward := p.Collect(ctx, &toks)
	assert.False(t, hasForward)
	assert.Equal(t, []token.Token{token.NewNumber(0x4000)}, e)
}
