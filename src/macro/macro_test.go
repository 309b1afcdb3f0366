package macro

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

// reversed builds a token slice in the reverse-reading-order the macro
// package (like expr/encoder) expects callers to hand it.
func reversed(toks ...token.Token) []token.Token {
	out := make([]token.Token, len(toks))
	for i, t := range toks {
		out[len(toks)-1-i] = t
	}
	return out
}

func TestBeginCollectRegistersNameAndParams(t *testing.T) {
	ctx := newTestContext()
	h := New()
	line := reversed(token.NewConstLabel("ADDXY"), token.NewConstLabel("x"), token.NewDelimiter(), token.NewConstLabel("y"))

	assert.NoError(t, h.BeginCollect(ctx, &line))
	assert.True(t, h.Collecting())
	assert.True(t, h.IsMacro("ADDXY"))
	assert.Empty(t, line)
}

func TestBeginCollectNestedIsError(t *testing.T) {
	ctx := newTestContext()
	h := New()
	first := reversed(token.NewConstLabel("A"))
	assert.NoError(t, h.BeginCollect(ctx, &first))

	second := reversed(token.NewConstLabel("B"))
	err := h.BeginCollect(ctx, &second)
	assert.Error(t, err)
}

func TestBeginCollectDuplicateNameIsError(t *testing.T) {
	ctx := newTestContext()
	h := New()
	first := reversed(token.NewConstLabel("A"))
	assert.NoError(t, h.BeginCollect(ctx, &first))
	assert.NoError(t, h.EndCollect(ctx))

	second := reversed(token.NewConstLabel("A"))
	err := h.BeginCollect(ctx, &second)
	assert.Error(t, err)
}

func TestEndCollectWithoutBeginIsError(t *testing.T) {
	ctx := newTestContext()
	h := New()
	assert.Error(t, h.EndCollect(ctx))
}

func TestCollectSubstitutesParamsAndEndToEndExpand(t *testing.T) {
	ctx := newTestContext()
	h := New()

	def := reversed(token.NewConstLabel("ADDXY"), token.NewConstLabel("x"), token.NewDelimiter(), token.NewConstLabel("y"))
	assert.NoError(t, h.BeginCollect(ctx, &def))

	line1 := reversed(token.NewOpCode(token.OpLd), token.NewRegister(token.RegA), token.NewDelimiter(), token.NewConstLabel("x"))
	assert.NoError(t, h.Collect(ctx, &line1))

	line2 := reversed(token.NewOpCode(token.OpAdd), token.NewRegister(token.RegA), token.NewDelimiter(), token.NewConstLabel("y"))
	assert.NoError(t, h.Collect(ctx, &line2))

	assert.NoError(t, h.EndCollect(ctx))
	assert.False(t, h.Collecting())

	call := reversed(token.NewNumber(1), token.NewDelimiter(), token.NewNumber(2))
	assert.NoError(t, h.ParseMacro(ctx, "ADDXY", &call))

	expanded1, ok := h.Expand()
	assert.True(t, ok)
	assert.Equal(t, reversed(token.NewOpCode(token.OpLd), token.NewRegister(token.RegA), token.NewDelimiter(), token.NewNumber(1)), expanded1)

	expanded2, ok := h.Expand()
	assert.True(t, ok)
	assert.Equal(t, reversed(token.NewOpCode(token.OpAdd), token.NewRegister(token.RegA), token.NewDelimiter(), token.NewNumber(2)), expanded2)

	_, ok = h.Expand()
	assert.False(t, ok)
}

func TestParseMacroWrongArgCountIsError(t *testing.T) {
	ctx := newTestContext()
	h := New()

	def := reversed(token.NewConstLabel("ONEARG"), token.NewConstLabel("x"))
	assert.NoError(t, h.BeginCollect(ctx, &def))
	body := reversed(token.NewOpCode(token.OpNop))
	assert.NoError(t, h.Collect(ctx, &body))
	assert.NoError(t, h.EndCollect(ctx))

	call := reversed(token.NewNumber(1), token.NewDelimiter(), token.NewNumber(2))
	err := h.ParseMacro(ctx, "ONEARG", &call)
	assert.Error(t, err)
}

func TestParseMacroUnknownNameIsError(t *testing.T) {
	ctx := newTestContext()
	h := New()
	call := reversed(token.NewNumber(1))
	assert.Error(t, h.ParseMacro(ctx, "NOSUCHMACRO", &call))
}

func TestAddDefineThenExpandDefinesSubstitutesValue(t *testing.T) {
	h := New()
	value := reversed(token.NewNumber(42))
	assert.NoError(t, h.AddDefine("WIDTH", value))
	assert.True(t, h.IsDefined("WIDTH"))

	line := reversed(token.NewOpCode(token.OpLd), token.NewRegister(token.RegA), token.NewDelimiter(), token.NewConstLabel("WIDTH"))
	got := h.ExpandDefines(line)
	want := reversed(token.NewOpCode(token.OpLd), token.NewRegister(token.RegA), token.NewDelimiter(), token.NewNumber(42))
	assert.Equal(t, want, got)
}

func TestExpandDefinesLeavesUnknownNamesAlone(t *testing.T) {
	h := New()
	line := reversed(token.NewConstLabel("SOMELABEL"))
	assert.Equal(t, line, h.ExpandDefines(line))
}

func TestExpandDefinesIsNotRecursive(t *testing.T) {
	h := New()
	assert.NoError(t, h.AddDefine("A", reversed(token.NewConstLabel("B"))))
	assert.NoError(t, h.AddDefine("B", reversed(token.NewNumber(7))))

	line := reversed(token.NewConstLabel("A"))
	got := h.ExpandDefines(line)
	assert.Equal(t, reversed(token.NewConstLabel("B")), got)
}
