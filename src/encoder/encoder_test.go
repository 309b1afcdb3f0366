package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zasm/asmctx"
	"zasm/compiler"
	"zasm/compiler/token"
)

func newTestEncoder() (*Encoder, *asmctx.Context, *asmctx.Bank) {
	ctx := asmctx.NewContext()
	ctx.Enter("test.asm", nil)
	bank := asmctx.NewBank()
	diags := compiler.NewDiagnostics()
	return New(ctx, bank, diags), ctx, bank
}

// reversed builds a token slice in the reverse-reading-order this
// package expects callers to hand it via Encoder.Tokens.
func reversed(toks ...token.Token) []token.Token {
	out := make([]token.Token, len(toks))
	for i, t := range toks {
		out[len(toks)-1-i] = t
	}
	return out
}

func TestEncodeNop(t *testing.T) {
	e, _, bank := newTestEncoder()
	assert.NoError(t, e.Encode(token.OpNop))
	assert.Equal(t, []byte{0x00}, bank.Bytes())
}

func TestEncodeAluOpSingleRegisterOperand(t *testing.T) {
	e, _, bank := newTestEncoder()
	e.Tokens = reversed(token.NewRegister(token.RegA))
	assert.NoError(t, e.Encode(token.OpAnd))
	assert.Equal(t, []byte{ALU(token.AluAnd, uint8(token.RegA))}, bank.Bytes())
}

func TestEncodeAluOpImmediateOperand(t *testing.T) {
	e, _, bank := newTestEncoder()
	e.Tokens = reversed(token.NewNumber(0x42))
	assert.NoError(t, e.Encode(token.OpAnd))
	assert.Equal(t, []byte{ALUImm(token.AluAnd), 0x42}, bank.Bytes())
}

func TestEncodeJrWithForwardReferenceDefersAndPlaceholders(t *testing.T) {
	e, ctx, bank := newTestEncoder()
	ctx.SetPC(0x8000)
	e.Tokens = reversed(token.NewConstLabel("TARGET"))

	assert.NoError(t, e.Encode(token.OpJr))
	assert.Equal(t, []byte{XYZ(0, 3, 0), 0x00}, bank.Bytes())
	assert.Equal(t, 1, ctx.ForwardRefCount())

	fw, ok := ctx.NextForwardRef()
	assert.True(t, ok)
	assert.True(t, fw.IsRelative)
	assert.Equal(t, 1, fw.ByteCount)
	assert.Equal(t, "TARGET", fw.Expression[0].Text)
}

func TestEncodeJrWithResolvedLabelComputesDisplacement(t *testing.T) {
	e, ctx, bank := newTestEncoder()
	ctx.SetPC(0x8000)
	assert.NoError(t, ctx.AddLabel("TARGET", false))
	ctx.SetPC(0x8010)
	e.Tokens = reversed(token.NewConstLabel("TARGET"))

	assert.NoError(t, e.Encode(token.OpJr))
	// TARGET (0x8000) - (pc-after-instruction 0x8012) = -0x12
	assert.Equal(t, []byte{XYZ(0, 3, 0), byte(0x8000 - 0x8012)}, bank.Bytes())
	assert.Equal(t, 0, ctx.ForwardRefCount())
}

func TestEmitByteAdvancesPC(t *testing.T) {
	e, ctx, _ := newTestEncoder()
	ctx.SetPC(0x100)
	assert.NoError(t, e.EmitByte(0xFF))
	assert.Equal(t, 0x101, ctx.PC())
}

func TestEmitWordIsLittleEndian(t *testing.T) {
	e, _, bank := newTestEncoder()
	assert.NoError(t, e.EmitWord(0x1234))
	assert.Equal(t, []byte{0x34, 0x12}, bank.Bytes())
}

func TestExpectByteWarnsOnOutOfRangeValue(t *testing.T) {
	e, _, _ := newTestEncoder()
	e.Tokens = reversed(token.NewNumber(300))
	n, err := e.ExpectByte(0)
	assert.NoError(t, err)
	assert.Equal(t, 300, n)
	assert.Len(t, e.Diagnostics.Warnings(), 1)
}

func TestExpectTokenMismatchIsError(t *testing.T) {
	e, _, _ := newTestEncoder()
	e.Tokens = reversed(token.NewNumber(1))
	assert.Error(t, e.ExpectToken(token.NewDelimiter()))
}

func TestEmitPrefixForIndexRegister(t *testing.T) {
	e, _, bank := newTestEncoder()
	n, err := e.emitPrefix(token.NewRegisterPair(token.RPIX))
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{0xDD}, bank.Bytes())
}

func TestHelperBitPacking(t *testing.T) {
	assert.Equal(t, byte(0b01_010_011), XYZ(1, 2, 3))
	assert.Equal(t, byte(0b10_01_0_101), XPQZ(2, 1, 0, 5))
}
