package encoder

import "zasm/compiler/token"

// Load encodes every LD form by first resolving both operands through
// IndirectExpression (folding a still-raw `(expr)` into an
// IndirectExpression token), then dispatching on operand shape, grounded
// on load.
func (e *Encoder) Load() error {
	lhs, err := e.IndirectExpression()
	if err != nil {
		return err
	}
	if err := e.ExpectToken(token.NewDelimiter()); err != nil {
		return err
	}
	rhs, err := e.IndirectExpression()
	if err != nil {
		return err
	}

	n, err := e.emitPrefix(lhs)
	if err != nil {
		return err
	}
	if n == 0 {
		if n, err = e.emitPrefix(rhs); err != nil {
			return err
		}
		_ = n
	}

	if lhs.IsSpecialReg() || rhs.IsSpecialReg() {
		return e.LoadSpecial(lhs, rhs)
	}
	if lhs.IsIndirect() || rhs.IsIndirect() {
		return e.LoadIndirect(lhs, rhs)
	}
	if lhs.IsReg() {
		return e.LoadR(lhs, rhs)
	}
	if lhs.IsRegPair() {
		return e.LoadRp(lhs, rhs)
	}
	return e.fatalf("syntax error")
}

// asHL folds IX/IY register-pair operands onto HL's slot, the
// substitution load_indirect applies before dispatching (IX/IY only
// change which prefix byte accompanies the instruction, never its
// opcode).
func asHL(t token.Token) token.Token {
	if t.Kind == token.KindRegisterPair && (t.RegPair == token.RPIX || t.RegPair == token.RPIY) {
		return token.NewRegisterPair(token.RPHL)
	}
	return t
}

// LoadIndirect encodes every LD form where one side is a memory
// reference, grounded on load_indirect.
func (e *Encoder) LoadIndirect(dst, src token.Token) error {
	dst = asHL(dst)
	src = asHL(src)
	for _, t := range []*token.Token{&dst, &src} {
		switch t.Kind {
		case token.KindAddressIndirect:
			*t = token.NewIndirectExpression([]token.Token{token.NewNumber(t.Number)})
		case token.KindConstLabelIndirect:
			*t = token.NewIndirectExpression([]token.Token{token.NewConstLabel(t.Text)})
		}
	}

	switch {
	case dst.Kind == token.KindRegisterPair && dst.RegPair == token.RPHL && src.Kind == token.KindIndirectExpression:
		return e.EmitInstr(nil, XPQZ(0, 2, 1, 2), src.Expr, false)
	case dst.Kind == token.KindRegisterPair && src.Kind == token.KindIndirectExpression:
		rp1, _ := dst.RegPair.RP1()
		p := byte(0xED)
		return e.EmitInstr(&p, XPQZ(1, rp1, 1, 3), src.Expr, false)

	case dst.Kind == token.KindRegisterIndirect && src.Kind == token.KindRegister && src.Reg == token.RegA:
		return e.Emit(XPQZ(0, uint8(dst.RegPairInd), 0, 2))
	case dst.Kind == token.KindIndirectExpression && src.Kind == token.KindRegister && src.Reg == token.RegA:
		return e.EmitInstr(nil, XPQZ(0, 3, 0, 2), dst.Expr, false)

	case dst.Kind == token.KindRegister && dst.Reg == token.RegA && src.Kind == token.KindRegisterIndirect:
		return e.Emit(XPQZ(0, uint8(src.RegPairInd), 1, 2))
	case dst.Kind == token.KindRegister && dst.Reg == token.RegA && src.Kind == token.KindIndirectExpression:
		return e.EmitInstr(nil, XPQZ(0, 3, 1, 2), src.Expr, false)

	case dst.Kind == token.KindIndirectExpression && src.Kind == token.KindRegisterPair && src.RegPair == token.RPHL:
		return e.EmitInstr(nil, XPQZ(0, 2, 0, 2), dst.Expr, false)
	case dst.Kind == token.KindIndirectExpression && src.Kind == token.KindRegisterPair:
		rp1, ok := src.RegPair.RP1()
		if !ok {
			return e.fatalf("invalid register pair")
		}
		p := byte(0xED)
		return e.EmitInstr(&p, XPQZ(1, rp1, 0, 3), dst.Expr, false)

	case dst.Kind == token.KindRegister && src.Kind == token.KindIndexIndirect:
		byteVal, err := e.Expr.Evaluate(e.Ctx, src.Expr)
		if err != nil {
			return e.fatalf("bad expression")
		}
		return e.Emit(XYZ(1, uint8(dst.Reg), uint8(token.RegHLInd)), byte(byteVal))

	case dst.Kind == token.KindIndexIndirect && src.Kind == token.KindNumber:
		byteVal, err := e.Expr.Evaluate(e.Ctx, dst.Expr)
		if err != nil {
			return e.fatalf("bad expression")
		}
		return e.Emit(0x36, byte(byteVal), byte(src.Number))

	case dst.Kind == token.KindIndexIndirect && src.Kind == token.KindRegister:
		byteVal, err := e.Expr.Evaluate(e.Ctx, dst.Expr)
		if err != nil {
			return e.fatalf("bad expression")
		}
		return e.Emit(XYZ(1, uint8(token.RegHLInd), uint8(src.Reg)), byte(byteVal))

	default:
		return e.fatalf("invalid instruction")
	}
}

// LoadR encodes LD r,r'/LD r,n, grounded on load_r.
func (e *Encoder) LoadR(dst, src token.Token) error {
	if dst.Kind == token.KindRegister && dst.Reg == token.RegA && src.Kind == token.KindIndirectExpression {
		return e.EmitInstr(nil, XPQZ(0, 3, 1, 2), src.Expr, false)
	}
	r, ok := dst.RegValue()
	if !ok {
		return e.fatalf("syntax error")
	}
	if rr, ok := src.RegValue(); ok {
		return e.EmitByte(XYZ(1, r, rr))
	}
	if src.IsExpressionClass() {
		e.PushToken(src)
		if err := e.EmitByte(XYZ(0, r, 6)); err != nil {
			return err
		}
		addr, err := e.ExpectByte(0)
		if err != nil {
			return err
		}
		return e.EmitByte(byte(addr))
	}
	return e.fatalf("syntax error")
}

// LoadRp encodes LD rr,nn, grounded on load_rp.
func (e *Encoder) LoadRp(dst, src token.Token) error {
	var rp uint8
	if dst.Kind == token.KindRegisterPair {
		rp, _ = dst.RegPair.RP1()
	}
	e.PushToken(src)
	if src.IsIndirect() {
		if err := e.EmitByte(XPQZ(0, 2, 1, 2)); err != nil {
			return err
		}
	} else {
		if err := e.EmitByte(XPQZ(0, rp, 0, 1)); err != nil {
			return err
		}
	}
	addr, err := e.ExpectWord(0)
	if err != nil {
		return err
	}
	return e.EmitWord(addr)
}

// LoadSpecial encodes every LD form touching SP, I or R, grounded on
// load_special.
func (e *Encoder) LoadSpecial(dst, src token.Token) error {
	switch {
	case dst.Kind == token.KindRegisterPair && dst.RegPair == token.RPSP && src.Kind == token.KindConstLabel:
		e.PushToken(src)
		addr, err := e.ExpectWord(1)
		if err != nil {
			return err
		}
		return e.Emit(XPQZ(0, 3, 0, 1), lo(addr), hi(addr))
	case dst.Kind == token.KindRegisterPair && dst.RegPair == token.RPSP && src.Kind == token.KindNumber:
		if src.Number < 0 || src.Number > 65535 {
			return e.fatalf("integer out of range")
		}
		return e.Emit(XPQZ(0, 3, 0, 1), lo(int(src.Number)), hi(int(src.Number)))
	case dst.Kind == token.KindIndirectExpression && src.Kind == token.KindRegisterPair && src.RegPair == token.RPSP:
		p := byte(0xED)
		return e.EmitInstr(&p, 0x73, dst.Expr, false)
	case dst.Kind == token.KindRegisterPair && dst.RegPair == token.RPSP && src.Kind == token.KindIndirectExpression:
		p := byte(0xED)
		return e.EmitInstr(&p, 0x7B, src.Expr, false)
	case dst.Kind == token.KindRegisterPair && dst.RegPair == token.RPSP && src.Kind == token.KindRegisterPair &&
		(src.RegPair == token.RPHL || src.RegPair == token.RPIX || src.RegPair == token.RPIY):
		return e.Emit(XPQZ(3, 3, 1, 1))
	}

	var y int = -1
	switch {
	case dst.Kind == token.KindRegisterIR && dst.IR == token.RegI && src.Kind == token.KindRegister && src.Reg == token.RegA:
		y = 0
	case dst.Kind == token.KindRegisterIR && dst.IR == token.RegR && src.Kind == token.KindRegister && src.Reg == token.RegA:
		y = 1
	case dst.Kind == token.KindRegister && dst.Reg == token.RegA && src.Kind == token.KindRegisterIR && src.IR == token.RegI:
		y = 2
	case dst.Kind == token.KindRegister && dst.Reg == token.RegA && src.Kind == token.KindRegisterIR && src.IR == token.RegR:
		y = 3
	}
	if y < 0 {
		return e.fatalf("invalid instruction")
	}
	return e.Emit(0xED, XYZ(1, uint8(y), 7))
}
