package encoder

import (
	"fmt"

	"zasm/asmctx"
	"zasm/compiler"
	"zasm/compiler/token"
	"zasm/expr"
)

// Encoder encodes one statement's opcode against its remaining operand
// tokens. A single Encoder is reused statement-by-statement by the
// compile package's pass-1 driver; Tokens holds the statement's
// not-yet-consumed operands in reverse-reading order (see expr package's
// doc comment on the same convention).
type Encoder struct {
	Ctx           *asmctx.Context
	Bank          *asmctx.Bank
	Expr          *expr.Parser
	Diagnostics   *compiler.Diagnostics
	Tokens        []token.Token
	Z80NEnabled   bool
	CSpectEnabled bool
}

// New returns an Encoder sharing the given context, bank and diagnostics
// sink across every statement of an assembly run.
func New(ctx *asmctx.Context, bank *asmctx.Bank, diags *compiler.Diagnostics) *Encoder {
	return &Encoder{Ctx: ctx, Bank: bank, Expr: expr.New(), Diagnostics: diags}
}

func (e *Encoder) fatalf(format string, args ...any) error {
	return e.Ctx.Fatalf(format, args...)
}

func (e *Encoder) warnf(format string, args ...any) {
	if e.Diagnostics == nil {
		return
	}
	e.Diagnostics.Warn(e.Ctx.CurrentFileName(), fmt.Sprintf(format, args...), compiler.Location{Line: e.Ctx.CurrentLineNumber()}, compiler.PipelinePass1)
}

// TakeToken pops the next operand token, failing if the statement ran out
// of tokens early.
func (e *Encoder) TakeToken() (token.Token, error) {
	n := len(e.Tokens)
	if n == 0 {
		return token.Token{}, e.fatalf("unexpected end of line")
	}
	t := e.Tokens[n-1]
	e.Tokens = e.Tokens[:n-1]
	return t, nil
}

// PushToken pushes a token back for a later TakeToken, used to backtrack
// when a speculative parse of one instruction form fails.
func (e *Encoder) PushToken(t token.Token) {
	e.Tokens = append(e.Tokens, t)
}

// PeekToken returns the next operand token without consuming it.
func (e *Encoder) PeekToken() token.Token {
	if len(e.Tokens) == 0 {
		return token.EndOfFile()
	}
	return e.Tokens[len(e.Tokens)-1]
}

// NextTokenIs reports whether the next operand token equals tok.
func (e *Encoder) NextTokenIs(tok token.Token) bool {
	return len(e.Tokens) > 0 && e.Tokens[len(e.Tokens)-1].Equal(tok)
}

// ExpectToken consumes the next token and fails unless it equals tok
// (e.g. the comma between two operands).
func (e *Encoder) ExpectToken(tok token.Token) error {
	t, err := e.TakeToken()
	if err != nil {
		return err
	}
	if !t.Equal(tok) {
		return e.fatalf("syntax error")
	}
	return nil
}

// ExpectNumberInRange parses an expression operand, warning (not failing)
// when its value falls outside [lo,hi). instrSize is the operand's byte
// offset from the current PC (where a deferred forward reference will be
// patched); count is the operand's width in bytes.
func (e *Encoder) ExpectNumberInRange(lo, hi, count, instrSize int, outOfRangeMsg string) (int, error) {
	n, deferred, err := e.Expr.Parse(e.Ctx, &e.Tokens, instrSize, count, false)
	if err != nil {
		return 0, err
	}
	if deferred {
		return 0, nil
	}
	if n < lo || n >= hi {
		e.warnf("%s", outOfRangeMsg)
	}
	return n, nil
}

// ExpectByte parses a single-byte expression operand.
func (e *Encoder) ExpectByte(instrSize int) (int, error) {
	return e.ExpectNumberInRange(0, 256, 1, instrSize, "byte value truncated")
}

// ExpectWord parses a two-byte expression operand.
func (e *Encoder) ExpectWord(instrSize int) (int, error) {
	return e.ExpectNumberInRange(0, 65536, 2, instrSize, "word value truncated")
}

// Relative evaluates a PC-relative displacement operand for JR/DJNZ,
// grounded on Assembler::relative. The instruction is 2 bytes long,
// so the branch is computed from pc+2.
func (e *Encoder) Relative() (byte, error) {
	n, deferred, err := e.Expr.Parse(e.Ctx, &e.Tokens, 1, 1, true)
	if err != nil {
		return 0, err
	}
	if deferred {
		return 0, nil
	}
	pc := e.Ctx.OffsetPC(2)
	return byte(n - pc), nil
}

// Emit appends bytes to the bank and advances PC, warning on 64K overflow.
func (e *Encoder) Emit(bytes ...byte) error {
	pc := e.Ctx.OffsetPC(len(bytes))
	if pc > 65535 {
		e.warnf("program counter overflowed 64K")
	}
	e.Ctx.SetPC(pc)
	return e.Bank.Append(bytes...)
}

// EmitByte appends a single byte and advances PC by one.
func (e *Encoder) EmitByte(b byte) error {
	pc := e.Ctx.OffsetPC(1)
	if pc > 65535 {
		e.warnf("program counter overflowed 64K")
	}
	e.Ctx.SetPC(pc)
	return e.Bank.Push(b)
}

// EmitWord appends a little-endian 16-bit word and advances PC by two.
func (e *Encoder) EmitWord(word int) error {
	if word < 0 || word > 65535 {
		e.warnf("word value truncated")
	}
	pc := e.Ctx.OffsetPC(2)
	if pc > 65535 {
		e.warnf("program counter overflowed 64K")
	}
	e.Ctx.SetPC(pc)
	if err := e.Bank.Push(lo(word)); err != nil {
		return err
	}
	return e.Bank.Push(hi(word))
}

// EmitInstr emits an optional prefix byte, the instruction byte, then the
// evaluated address/displacement operand in expr (reverse-reading order,
// see the expr package doc), as either a single byte or a word (grounded
// on emitter.rs's emit_instr).
func (e *Encoder) EmitInstr(prefix *byte, instr byte, expr []token.Token, asByte bool) error {
	if prefix != nil {
		if err := e.EmitByte(*prefix); err != nil {
			return err
		}
	}
	if err := e.EmitByte(instr); err != nil {
		return err
	}
	cp := append([]token.Token{}, expr...)
	count := 2
	if asByte {
		count = 1
	}
	a, deferred, err := e.Expr.Parse(e.Ctx, &cp, 0, count, false)
	if err != nil {
		return err
	}
	if deferred {
		a = 0
	}
	if asByte {
		return e.EmitByte(byte(a))
	}
	return e.EmitWord(a)
}

// emitPrefix emits the DD/FD prefix a token requires (if any), advancing
// PC by the number of bytes written.
func (e *Encoder) emitPrefix(t token.Token) (int, error) {
	prefixByte, present := t.IsIndexPrefix()
	n, err := e.Bank.EmitPrefix(prefixByte, present)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.Ctx.AddPC(n)
	}
	return n, nil
}
