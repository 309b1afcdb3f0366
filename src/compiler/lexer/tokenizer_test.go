package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zasm/compiler/token"
)

func TestTokenizeSimpleInstruction(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("LD A, 5")
	assert.NoError(t, err)
	assert.Equal(t, token.NewOpCode(token.OpLd), toks[0])
	assert.Equal(t, token.NewRegister(token.RegA), toks[1])
	assert.Equal(t, token.NewDelimiter(), toks[2])
	assert.Equal(t, token.NewNumber(5), toks[3])
}

func TestTokenizeCommentStrippedAfterSemicolon(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("NOP ; this is ignored")
	assert.NoError(t, err)
	assert.Len(t, toks, 1)
	assert.Equal(t, token.NewOpCode(token.OpNop), toks[0])
}

func TestTokenizeRegisterIndirectHL(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("LD (HL), A")
	assert.NoError(t, err)
	assert.Equal(t, token.NewOpCode(token.OpLd), toks[0])
	assert.Equal(t, token.NewRegister(token.RegHLInd), toks[1])
}

func TestTokenizeRegisterIndirectBC(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("LD A, (BC)")
	assert.NoError(t, err)
	assert.Equal(t, token.NewRegisterIndirect(token.RPIndBC), toks[len(toks)-1])
}

func TestTokenizeConditionCAfterJR(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("JR C, TARGET")
	assert.NoError(t, err)
	assert.Equal(t, token.NewOpCode(token.OpJr), toks[0])
	assert.Equal(t, token.NewCondition(token.CndC), toks[1])
}

func TestTokenizeRegisterCWhenNotConditional(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("LD B, C")
	assert.NoError(t, err)
	assert.Equal(t, token.NewRegister(token.RegC), toks[len(toks)-1])
}

func TestTokenizeParenCIndirectAfterIN(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("IN A, (C)")
	assert.NoError(t, err)
	assert.Equal(t, token.NewRegisterIndirect(token.RPIndC), toks[len(toks)-1])
}

func TestTokenizeParenCAsConditionAfterCall(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("CALL (C)")
	assert.NoError(t, err)
	assert.Equal(t, token.NewCondition(token.CndC), toks[len(toks)-1])
}

func TestTokenizeIndexIndirectDisplacement(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("LD A, (IX+5)")
	assert.NoError(t, err)
	last := toks[len(toks)-1]
	assert.Equal(t, token.KindIndexIndirect, last.Kind)
	assert.Equal(t, token.RPIX, last.RegPair)
	assert.Equal(t, int64(5), last.Expr[0].Number)
}

func TestTokenizeIndexIndirectNegativeDisplacement(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("LD A, (IY-3)")
	assert.NoError(t, err)
	last := toks[len(toks)-1]
	assert.Equal(t, token.KindIndexIndirect, last.Kind)
	assert.Equal(t, token.RPIY, last.RegPair)
	assert.Equal(t, int64(-3), last.Expr[0].Number)
}

func TestTokenizeAddressIndirect(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("LD HL, (1234)")
	assert.NoError(t, err)
	last := toks[len(toks)-1]
	assert.Equal(t, token.KindAddressIndirect, last.Kind)
	assert.Equal(t, int64(1234), last.Number)
}

func TestTokenizeUnclosedParenIsError(t *testing.T) {
	lt := NewLineTokenizer()
	_, err := lt.Tokenize("LD A, (HL")
	assert.Error(t, err)
}

func TestTokenizeUnexpectedCloseParenIsError(t *testing.T) {
	lt := NewLineTokenizer()
	_, err := lt.Tokenize("LD A, HL)")
	assert.Error(t, err)
}

func TestTokenizeShiftOperatorDoubling(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("VAL = 1 << 4")
	assert.NoError(t, err)
	assert.Equal(t, token.NewOperator(token.OpShl), toks[3])
}

func TestTokenizeSingleQuotedCharLiteral(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize("DB 'A'")
	assert.NoError(t, err)
	assert.Equal(t, token.NewNumber(int64('A')), toks[1])
}

func TestTokenizeDoubleQuotedString(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize(`DZ "hi"`)
	assert.NoError(t, err)
	assert.Equal(t, token.NewStringLiteral("hi"), toks[1])
}

func TestTokenizeLocalLabel(t *testing.T) {
	lt := NewLineTokenizer()
	toks, err := lt.Tokenize(".loop: DJNZ .loop")
	assert.NoError(t, err)
	assert.Equal(t, token.NewConstLabel(".loop:"), toks[0])
}
