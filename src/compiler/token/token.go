// Package token implements the closed set of tagged tokens the assembler
// pipeline passes between the line tokenizer, the expression engine and
// the instruction encoder (§2-C1, §3).
package token

import "fmt"

// Kind discriminates the Token union. A Token only ever populates the
// fields relevant to its Kind; all others are left zero.
type Kind uint8

const (
	KindNone Kind = iota
	KindInvalid
	KindEndOfFile
	KindDirective
	KindOpCode
	KindRegister
	KindRegisterPair
	KindRegisterIX
	KindRegisterIY
	KindRegisterIR
	KindRegisterIndirect
	KindIndexIndirect
	KindAddressIndirect
	KindConstLabelIndirect
	KindIndirectExpression
	KindCondition
	KindNumber
	KindStringLiteral
	KindBoolean
	KindDelimiter
	KindOperator
	KindConstLabel
	KindMacroParam
	KindSizeOf
	KindOpt
)

// Token is the tagged variant described in §3. Composite payloads
// (IndexIndirect's displacement expression, IndirectExpression's
// sub-sequence) are stored as nested token slices so the expression engine
// (C5) can re-walk them without a second representation.
type Token struct {
	Kind Kind

	Directive Directive
	OpCode    OpCode
	Reg       Reg
	RegPair   RegPair
	IxHalf    IxHalf
	IyHalf    IyHalf
	IR        IR
	RegPairInd RegPairInd
	Cnd       Cnd
	Op        Op
	Opt       OptionKind

	Number  int64
	Text    string // StringLiteral, ConstLabel, MacroParam, SizeOf name
	Boolean bool

	// IndexIndirect: RegPair is IX or IY, Expr holds the displacement
	// expression tokens (possibly a single Number).
	// IndirectExpression: Expr holds the full enclosed token sequence.
	Expr []Token
}

func (t Token) String() string {
	switch t.Kind {
	case KindNone:
		return "<none>"
	case KindInvalid:
		return "<invalid>"
	case KindEndOfFile:
		return "<eof>"
	case KindDirective:
		return t.Directive.String()
	case KindOpCode:
		return fmt.Sprintf("opcode(%d)", t.OpCode)
	case KindNumber:
		return fmt.Sprintf("%d", t.Number)
	case KindConstLabel:
		return t.Text
	case KindStringLiteral:
		return fmt.Sprintf("%q", t.Text)
	default:
		return fmt.Sprintf("token(kind=%d)", t.Kind)
	}
}

// Constructors. These mirror the Rust Token enum's variant constructors
// one-for-one so callers read the same way the original source does.

func None() Token                   { return Token{Kind: KindNone} }
func Invalid() Token                { return Token{Kind: KindInvalid} }
func EndOfFile() Token              { return Token{Kind: KindEndOfFile} }
func NewDirective(d Directive) Token { return Token{Kind: KindDirective, Directive: d} }
func NewOpCode(o OpCode) Token        { return Token{Kind: KindOpCode, OpCode: o} }
func NewRegister(r Reg) Token         { return Token{Kind: KindRegister, Reg: r} }
func NewRegisterPair(rp RegPair) Token { return Token{Kind: KindRegisterPair, RegPair: rp} }
func NewRegisterIX(u IxHalf) Token    { return Token{Kind: KindRegisterIX, IxHalf: u} }
func NewRegisterIY(u IyHalf) Token    { return Token{Kind: KindRegisterIY, IyHalf: u} }
func NewRegisterIR(i IR) Token        { return Token{Kind: KindRegisterIR, IR: i} }
func NewRegisterIndirect(p RegPairInd) Token {
	return Token{Kind: KindRegisterIndirect, RegPairInd: p}
}
func NewIndexIndirect(rp RegPair, expr []Token) Token {
	return Token{Kind: KindIndexIndirect, RegPair: rp, Expr: expr}
}
func NewAddressIndirect(n int64) Token { return Token{Kind: KindAddressIndirect, Number: n} }
func NewConstLabelIndirect(name string) Token {
	return Token{Kind: KindConstLabelIndirect, Text: name}
}
func NewIndirectExpression(expr []Token) Token {
	return Token{Kind: KindIndirectExpression, Expr: expr}
}
func NewCondition(c Cnd) Token        { return Token{Kind: KindCondition, Cnd: c} }
func NewNumber(n int64) Token          { return Token{Kind: KindNumber, Number: n} }
func NewStringLiteral(s string) Token { return Token{Kind: KindStringLiteral, Text: s} }
func NewBoolean(b bool) Token          { return Token{Kind: KindBoolean, Boolean: b} }
func NewDelimiter() Token              { return Token{Kind: KindDelimiter} }
func NewOperator(op Op) Token          { return Token{Kind: KindOperator, Op: op} }
func NewConstLabel(name string) Token { return Token{Kind: KindConstLabel, Text: name} }
func NewMacroParam(name string) Token { return Token{Kind: KindMacroParam, Text: name} }
func NewSizeOf(name string) Token     { return Token{Kind: KindSizeOf, Text: name} }
func NewOpt(k OptionKind) Token        { return Token{Kind: KindOpt, Opt: k} }

// IsIndexPrefix returns the DD/FD prefix byte required to address t, if any.
func (t Token) IsIndexPrefix() (byte, bool) {
	switch {
	case t.Kind == KindRegisterPair && t.RegPair == RPIX, t.Kind == KindRegisterIX,
		t.Kind == KindIndexIndirect && t.RegPair == RPIX:
		return 0xDD, true
	case t.Kind == KindRegisterPair && t.RegPair == RPIY, t.Kind == KindRegisterIY,
		t.Kind == KindIndexIndirect && t.RegPair == RPIY:
		return 0xFD, true
	default:
		return 0, false
	}
}

// IsIndirect reports whether t is one of the indirect-addressing forms.
func (t Token) IsIndirect() bool {
	switch t.Kind {
	case KindRegisterIndirect, KindIndexIndirect, KindIndirectExpression, KindAddressIndirect, KindConstLabelIndirect:
		return true
	default:
		return false
	}
}

// IsReg reports whether t names an 8-bit register (including IX/IY halves).
func (t Token) IsReg() bool {
	switch t.Kind {
	case KindRegister, KindRegisterIX, KindRegisterIY:
		return true
	default:
		return false
	}
}

// IsRegPair reports whether t is a 16-bit register pair.
func (t Token) IsRegPair() bool { return t.Kind == KindRegisterPair }

// IsSpecialReg reports whether t is SP or I/R — the operands load_special
// handles before the generic register dispatch.
func (t Token) IsSpecialReg() bool {
	if t.Kind == KindRegisterPair && t.RegPair == RPSP {
		return true
	}
	return t.Kind == KindRegisterIR
}

// IsExpressionClass reports whether t can participate in an expression
// (§4.4 step 1's "pop while expression-class").
func (t Token) IsExpressionClass() bool {
	switch t.Kind {
	case KindNumber, KindOperator, KindConstLabel, KindSizeOf:
		return true
	default:
		return false
	}
}

// CanBeConditional reports whether an opcode token accepts a condition
// code operand (JR/RET/CALL/JP), used by the tokenizer's contextual re-tag.
func (t Token) CanBeConditional() bool {
	if t.Kind != KindOpCode {
		return false
	}
	switch t.OpCode {
	case OpJr, OpRet, OpCall, OpJp:
		return true
	default:
		return false
	}
}

// NumberToByte returns t's value as a byte if t is a Number in 0..255;
// any other token or value reports false.
func (t Token) NumberToByte() (byte, bool) {
	if t.Kind != KindNumber {
		return 0, false
	}
	if t.Number < 0 || t.Number > 255 {
		return 0, false
	}
	return byte(t.Number), true
}

// RegValue returns the 3-bit register index the encoder needs for any
// register-shaped token (plain, IX-half, IY-half or pair).
func (t Token) RegValue() (byte, bool) {
	switch t.Kind {
	case KindRegister:
		return byte(t.Reg), true
	case KindRegisterIX:
		return byte(t.IxHalf), true
	case KindRegisterIY:
		return byte(t.IyHalf), true
	case KindRegisterPair:
		return byte(t.RegPair), true
	default:
		return 0, false
	}
}

// Equal reports whether two tokens are the same variant and, for
// Register, RegisterPair, RegisterIndirect, Condition, Number and
// Operator tokens, carry the same payload (used for delimiter, register
// and `=` checks). Every other variant compares by kind alone; composite
// Expr payloads are never compared.
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindRegister:
		return t.Reg == o.Reg
	case KindRegisterPair:
		return t.RegPair == o.RegPair
	case KindRegisterIndirect:
		return t.RegPairInd == o.RegPairInd
	case KindCondition:
		return t.Cnd == o.Cnd
	case KindNumber:
		return t.Number == o.Number
	case KindOperator:
		return t.Op == o.Op
	case KindDelimiter:
		return true
	default:
		return true
	}
}
