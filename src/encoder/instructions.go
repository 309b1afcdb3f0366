package encoder

import "zasm/compiler/token"

// AluOp encodes the single-operand forms of the 8-bit ALU group (AND/OR/
// XOR/CP/SUB when not given as the two-operand A,src form), grounded on
// InstructionEncoder::alu_op.
func (e *Encoder) AluOp(a token.AluOp) error {
	tok, err := e.TakeToken()
	if err != nil {
		return err
	}
	n, err := e.emitPrefix(tok)
	if err != nil {
		return err
	}
	_ = n

	switch {
	case tok.Kind == token.KindIndexIndirect:
		byteVal, err := e.Expr.Evaluate(e.Ctx, tok.Expr)
		if err != nil {
			return e.fatalf("bad expression")
		}
		return e.Emit(ALU(a, 6), byte(byteVal))
	case tok.Kind == token.KindRegisterIX:
		return e.EmitByte(ALU(a, uint8(tok.IxHalf)))
	case tok.Kind == token.KindRegisterIY:
		return e.EmitByte(ALU(a, uint8(tok.IyHalf)))
	case tok.Kind == token.KindRegister:
		return e.EmitByte(ALU(a, uint8(tok.Reg)))
	default:
		e.PushToken(tok)
		b, err := e.ExpectByte(1)
		if err != nil {
			return err
		}
		return e.Emit(ALUImm(a), byte(b))
	}
}

// AluOpR encodes the two-operand ALU forms (ADD/ADC/SBC HL,rr and the
// Z80N extended 16-bit ALU group), falling back to AluOp when there is no
// comma (a single-operand form), grounded on alu_op_r.
func (e *Encoder) AluOpR(a token.AluOp, x, q uint8) error {
	lhs, err := e.TakeToken()
	if err != nil {
		return err
	}
	if err := e.ExpectToken(token.NewDelimiter()); err != nil {
		e.PushToken(lhs)
		return e.AluOp(a)
	}
	rhs, err := e.TakeToken()
	if err != nil {
		return err
	}

	n, err := e.emitPrefix(lhs)
	if err != nil {
		return err
	}
	_ = n

	if lhs.Kind == token.KindRegisterPair && lhs.RegPair == token.RPHL && rhs.Kind == token.KindRegisterPair {
		rp1, _ := rhs.RegPair.RP1()
		switch a {
		case token.AluAdd:
			return e.EmitByte(XPQZ(0, rp1, 1, 1))
		case token.AluAdc:
			return e.Emit(0xED, XPQZ(1, rp1, 1, 2))
		case token.AluSbc:
			return e.Emit(0xED, XPQZ(1, rp1, 0, 2))
		}
	}

	if lhs.Kind == token.KindRegisterPair && (lhs.RegPair == token.RPIX || lhs.RegPair == token.RPIY) && rhs.Kind == token.KindRegisterPair {
		rp1, _ := rhs.RegPair.RP1()
		return e.EmitByte(XPQZ(x, rp1, q, 1))
	}

	if lhs.Kind == token.KindRegister && lhs.Reg == token.RegA {
		e.PushToken(rhs)
		return e.AluOp(a)
	}

	if lhs.Kind == token.KindRegisterPair {
		if !e.Z80NEnabled {
			if rhs.Kind == token.KindRegister && rhs.Reg == token.RegA {
				return e.fatalf("Z80N extensions are disabled")
			}
			if rhs.Kind == token.KindNumber || rhs.Kind == token.KindConstLabel {
				return e.fatalf("Z80N extensions are disabled")
			}
		} else {
			if rhs.Kind == token.KindRegister && rhs.Reg == token.RegA {
				nrp, _ := lhs.RegPair.NRP()
				return e.Emit(0xED, 0x31+nrp)
			}
			if rhs.IsExpressionClass() {
				e.PushToken(rhs)
				nrp, _ := lhs.RegPair.NRP()
				if err := e.Emit(0xED, 0x34+nrp); err != nil {
					return err
				}
				addr, err := e.ExpectWord(0)
				if err != nil {
					return err
				}
				return e.EmitWord(addr)
			}
		}
	}

	return e.fatalf("invalid instruction")
}

// BitResSet encodes BIT/RES/SET, grounded on bit_res_set.
func (e *Encoder) BitResSet(x uint8) error {
	bit, err := e.ExpectByte(1)
	if err != nil {
		return err
	}
	if bit < 0 || bit > 7 {
		e.warnf("bit number truncated")
	}
	if err := e.ExpectToken(token.NewDelimiter()); err != nil {
		return err
	}

	tok, err := e.TakeToken()
	if err != nil {
		return err
	}
	if _, err := e.emitPrefix(tok); err != nil {
		return err
	}

	switch {
	case tok.Kind == token.KindIndexIndirect:
		if e.NextTokenIs(token.NewDelimiter()) {
			e.TakeToken()
			r, err := e.TakeToken()
			if err != nil {
				return err
			}
			if r.Kind != token.KindRegister {
				return e.fatalf("syntax error")
			}
			byteVal, err := e.Expr.Evaluate(e.Ctx, tok.Expr)
			if err != nil {
				return e.fatalf("bad expression")
			}
			return e.Emit(0xCB, byte(byteVal), XYZ(x, uint8(bit), uint8(r.Reg)))
		}
		byteVal, err := e.Expr.Evaluate(e.Ctx, tok.Expr)
		if err != nil {
			return e.fatalf("bad expression")
		}
		return e.Emit(0xCB, byte(byteVal), XYZ(x, uint8(bit), uint8(token.RegHLInd)))
	case tok.Kind == token.KindRegisterIX, tok.Kind == token.KindRegisterIY:
		return e.Emit(0xCB, XYZ(x, uint8(bit), uint8(token.RegHLInd)))
	case tok.Kind == token.KindRegister:
		return e.Emit(0xCB, XYZ(x, uint8(bit), uint8(tok.Reg)))
	default:
		return e.fatalf("invalid instruction")
	}
}

// CallJp encodes CALL and the fallback direct-address form of JP (with an
// optional leading condition code), grounded on call_jp.
func (e *Encoder) CallJp(q, z uint8) error {
	var instr byte
	if e.PeekToken().Kind == token.KindCondition {
		c := e.PeekToken().Cnd
		e.TakeToken()
		if err := e.ExpectToken(token.NewDelimiter()); err != nil {
			return err
		}
		instr = XYZ(3, uint8(c), z-1)
	} else {
		instr = XPQZ(3, 0, q, z)
	}
	addr, err := e.ExpectWord(1)
	if err != nil {
		return err
	}
	return e.Emit(instr, lo(addr), hi(addr))
}

// Jp encodes JP, special-casing JP (HL)/(IX+d)/(IY+d) before falling back
// to CallJp for the conditional/direct-address forms, grounded on jp.
func (e *Encoder) Jp() error {
	top := e.PeekToken()
	switch {
	case top.Kind == token.KindIndexIndirect:
		e.TakeToken()
		var prefix byte
		if top.RegPair == token.RPIX {
			prefix = 0xDD
		} else {
			prefix = 0xFD
		}
		return e.Emit(prefix, XPQZ(3, 2, 1, 1))
	case top.Kind == token.KindRegister && top.Reg == token.RegHLInd:
		e.TakeToken()
		return e.EmitByte(XPQZ(3, 2, 1, 1))
	}
	return e.CallJp(0, 3)
}

// Ex encodes EX, grounded on ex.
func (e *Encoder) Ex() error {
	lhs, err := e.TakeToken()
	if err != nil {
		return err
	}
	if err := e.ExpectToken(token.NewDelimiter()); err != nil {
		return err
	}
	rhs, err := e.TakeToken()
	if err != nil {
		return err
	}
	if _, err := e.emitPrefix(rhs); err != nil {
		return err
	}

	switch {
	case lhs.Kind == token.KindRegisterPair && lhs.RegPair == token.RPAF && rhs.Kind == token.KindRegisterPair && rhs.RegPair == token.RPAFPrime:
		return e.EmitByte(0x08)
	case lhs.Kind == token.KindRegisterPair && rhs.Kind == token.KindRegisterPair &&
		((lhs.RegPair == token.RPDE && rhs.RegPair == token.RPHL) || (lhs.RegPair == token.RPHL && rhs.RegPair == token.RPDE)):
		return e.EmitByte(0xEB)
	case lhs.Kind == token.KindRegisterIndirect && lhs.RegPairInd == token.RPIndSP && rhs.Kind == token.KindRegisterPair &&
		(rhs.RegPair == token.RPHL || rhs.RegPair == token.RPIX || rhs.RegPair == token.RPIY):
		return e.EmitByte(0xE3)
	default:
		return e.fatalf("invalid register pair")
	}
}

// Im encodes IM 0/1/2, grounded on im.
func (e *Encoder) Im() error {
	tok, err := e.TakeToken()
	if err != nil {
		return err
	}
	if tok.Kind != token.KindNumber {
		return e.fatalf("syntax error")
	}
	n := tok.Number
	if n < 0 || n > 2 {
		return e.fatalf("integer out of range")
	}
	if n > 0 {
		n++
	}
	return e.Emit(0xED, XYZ(1, uint8(n), 6))
}

// IncDec encodes INC/DEC, grounded on inc_dec.
func (e *Encoder) IncDec(q uint8) error {
	tok, err := e.TakeToken()
	if err != nil {
		return err
	}
	if _, err := e.emitPrefix(tok); err != nil {
		return err
	}

	switch {
	case tok.Kind == token.KindIndexIndirect:
		byteVal, err := e.Expr.Evaluate(e.Ctx, tok.Expr)
		if err != nil {
			return e.fatalf("bad expression")
		}
		return e.Emit(XYZ(0, uint8(token.RegHLInd), q+4), byte(byteVal))
	case tok.Kind == token.KindRegisterPair && (tok.RegPair == token.RPIX || tok.RegPair == token.RPIY):
		return e.EmitByte(XPQZ(0, 2, q, 3))
	case tok.Kind == token.KindRegisterPair:
		rp1, _ := tok.RegPair.RP1()
		return e.EmitByte(XPQZ(0, rp1, q, 3))
	case tok.Kind == token.KindRegisterIX:
		return e.EmitByte(XYZ(0, uint8(tok.IxHalf), q+4))
	case tok.Kind == token.KindRegisterIY:
		return e.EmitByte(XYZ(0, uint8(tok.IyHalf), q+4))
	case tok.Kind == token.KindRegister:
		return e.EmitByte(XYZ(0, uint8(tok.Reg), q+4))
	default:
		return e.fatalf("syntax error")
	}
}

// IoOp encodes IN (y=3) and OUT (y=2), grounded on io_op.
func (e *Encoder) IoOp(y uint8) error {
	lhs, err := e.TakeToken()
	if err != nil {
		return err
	}

	if !e.NextTokenIs(token.NewDelimiter()) && lhs.Kind == token.KindRegisterIndirect && lhs.RegPairInd == token.RPIndC {
		if y == 3 {
			return e.Emit(0xED, 0x70)
		}
		return e.fatalf("syntax error")
	}
	if err := e.ExpectToken(token.NewDelimiter()); err != nil {
		return err
	}
	rhs, err := e.TakeToken()
	if err != nil {
		return err
	}

	switch {
	case y == 3 && lhs.Kind == token.KindRegister && lhs.Reg == token.RegA && rhs.Kind == token.KindIndirectExpression:
		return e.EmitInstr(nil, XYZ(3, y, 3), rhs.Expr, true)
	case y == 3 && lhs.Kind == token.KindRegister && rhs.Kind == token.KindRegisterIndirect && rhs.RegPairInd == token.RPIndC:
		return e.Emit(0xED, XYZ(1, uint8(lhs.Reg), 0))
	case y == 2 && lhs.Kind == token.KindIndirectExpression && rhs.Kind == token.KindRegister && rhs.Reg == token.RegA:
		return e.EmitInstr(nil, XYZ(3, y, 3), lhs.Expr, true)
	case y == 2 && lhs.Kind == token.KindRegisterIndirect && lhs.RegPairInd == token.RPIndC && rhs.Kind == token.KindNumber && rhs.Number == 0:
		return e.Emit(0xED, 0x71)
	case y == 2 && lhs.Kind == token.KindRegisterIndirect && lhs.RegPairInd == token.RPIndC && rhs.Kind == token.KindRegister:
		return e.Emit(0xED, XYZ(1, uint8(rhs.Reg), 1))
	default:
		return e.fatalf("syntax error")
	}
}

// Jr encodes JR/DJNZ, grounded on jr.
func (e *Encoder) Jr(djnz bool) error {
	top := e.PeekToken()
	switch {
	case top.Kind == token.KindOperator && top.Op == token.OpAsmPC, top.Kind == token.KindNumber, top.Kind == token.KindConstLabel:
		offset, err := e.Relative()
		if err != nil {
			return err
		}
		if djnz {
			return e.Emit(0x10, offset)
		}
		return e.Emit(XYZ(0, 3, 0), offset)
	case top.Kind == token.KindCondition:
		if !top.Cnd.CanBeJRCondition() {
			return e.fatalf("invalid condition")
		}
		e.TakeToken()
		if err := e.ExpectToken(token.NewDelimiter()); err != nil {
			return err
		}
		offset, err := e.Relative()
		if err != nil {
			return err
		}
		return e.Emit(XYZ(0, uint8(top.Cnd)+4, 0), offset)
	default:
		return e.fatalf("syntax error")
	}
}

// PushPop encodes PUSH/POP, including the Z80N "PUSH nn" immediate-push
// extension, grounded on push_pop.
func (e *Encoder) PushPop(z uint8) error {
	tok, err := e.TakeToken()
	if err != nil {
		return err
	}
	if _, err := e.emitPrefix(tok); err != nil {
		return err
	}

	if tok.Kind == token.KindRegisterPair {
		rp2, ok := tok.RegPair.RP2()
		if !ok {
			return e.fatalf("invalid register pair")
		}
		return e.EmitByte(XPQZ(3, rp2, 0, z))
	}

	if !e.Z80NEnabled {
		return e.fatalf("invalid instruction")
	}
	e.PushToken(tok)
	n, err := e.ExpectWord(2)
	if err != nil {
		return err
	}
	// Z80N PUSH nn stores its immediate big-endian; the second pass's
	// forward-reference patcher detects the preceding ED 8A bytes and
	// swaps the two patched bytes back to match (see
	// compile.Assembler.SecondPass).
	return e.Emit(0xED, 0x8A, hi(n), lo(n))
}

// Ret encodes RET, with an optional leading condition code.
func (e *Encoder) Ret() error {
	if len(e.Tokens) > 0 {
		tok, err := e.TakeToken()
		if err != nil {
			return err
		}
		if tok.Kind == token.KindCondition {
			return e.EmitByte(XYZ(3, uint8(tok.Cnd), 0))
		}
		e.PushToken(tok)
	}
	return e.EmitByte(0xC9)
}

// Rot encodes the CB-prefixed shift/rotate group, grounded on rot.
func (e *Encoder) Rot(a token.RotOp) error {
	tok, err := e.TakeToken()
	if err != nil {
		return err
	}
	if _, err := e.emitPrefix(tok); err != nil {
		return err
	}

	switch {
	case tok.Kind == token.KindIndexIndirect:
		if e.NextTokenIs(token.NewDelimiter()) {
			e.TakeToken()
			r, err := e.TakeToken()
			if err != nil {
				return err
			}
			if r.Kind != token.KindRegister {
				return e.fatalf("syntax error")
			}
			byteVal, err := e.Expr.Evaluate(e.Ctx, tok.Expr)
			if err != nil {
				return e.fatalf("bad expression")
			}
			return e.Emit(0xCB, byte(byteVal), RotEncode(a, uint8(r.Reg)))
		}
		byteVal, err := e.Expr.Evaluate(e.Ctx, tok.Expr)
		if err != nil {
			return e.fatalf("bad expression")
		}
		return e.Emit(0xCB, byte(byteVal), RotEncode(a, uint8(token.RegHLInd)))
	case tok.Kind == token.KindRegister:
		return e.Emit(0xCB, RotEncode(a, uint8(tok.Reg)))
	default:
		return e.fatalf("syntax error")
	}
}

// Rst encodes RST, grounded on rst.
func (e *Encoder) Rst() error {
	tok, err := e.TakeToken()
	if err != nil {
		return err
	}
	if tok.Kind != token.KindNumber {
		return e.fatalf("invalid instruction")
	}
	n := tok.Number
	if ((n/8)&7)*8 != n {
		return e.fatalf("integer out of range")
	}
	return e.EmitByte(XYZ(3, uint8(n>>3), 7))
}

// Mul encodes the Z80N MUL D,E instruction, grounded on mul.
func (e *Encoder) Mul() error {
	if !e.Z80NEnabled {
		return e.fatalf("Z80N extensions are disabled")
	}
	if e.NextTokenIs(token.NewRegisterPair(token.RPDE)) {
		e.TakeToken()
		return e.Emit(0xED, 0x30)
	}
	if err := e.ExpectToken(token.NewRegister(token.RegD)); err != nil {
		return err
	}
	if err := e.ExpectToken(token.NewDelimiter()); err != nil {
		return err
	}
	if err := e.ExpectToken(token.NewRegister(token.RegE)); err != nil {
		return err
	}
	return e.Emit(0xED, 0x30)
}

// NextReg encodes the Z80N NEXTREG instruction, grounded on next_reg.
func (e *Encoder) NextReg() error {
	if !e.Z80NEnabled {
		return e.fatalf("Z80N extensions are disabled")
	}
	reg, err := e.ExpectByte(2)
	if err != nil {
		return err
	}
	if err := e.ExpectToken(token.NewDelimiter()); err != nil {
		return err
	}
	if e.PeekToken().Kind == token.KindRegister && e.PeekToken().Reg == token.RegA {
		e.TakeToken()
		return e.Emit(0xED, 0x92, byte(reg))
	}
	n, err := e.ExpectByte(3)
	if err != nil {
		return err
	}
	return e.Emit(0xED, 0x91, byte(reg), byte(n))
}

// IndirectExpression resolves an operand token that may be a generic
// `(expr)` form the line tokenizer left unfolded: it consumes the `(`,
// re-collects the enclosed expression, and requires a matching `)`,
// returning an IndirectExpression token; any other token is returned
// unchanged. Grounded on indirect_expression — the lazy fold the
// tokenizer's foldOne defers to this encoder stage.
func (e *Encoder) IndirectExpression() (token.Token, error) {
	lhs, err := e.TakeToken()
	if err != nil {
		return token.Token{}, err
	}
	if lhs.Kind != token.KindOperator || lhs.Op != token.OpLParen {
		return lhs, nil
	}

	// Collect is greedy over every expression-class token, which (per
	// token_traits.rs's is_expression) includes operators in general —
	// so it swallows this form's own closing `)` as the last element
	// collected, exactly like get_expression does here in the original.
	collected, _ := e.Expr.Collect(e.Ctx, &e.Tokens)
	if len(collected) == 0 || collected[len(collected)-1].Kind != token.KindOperator || collected[len(collected)-1].Op != token.OpRParen {
		return token.Token{}, e.fatalf("unclosed parenthesis")
	}
	collected = collected[:len(collected)-1]

	// Collected is in forward-reading order; IndirectExpression's payload
	// is stored in the pipeline's usual reverse-reading order so a later
	// EmitInstr's own Parse call pops it correctly.
	reversed := make([]token.Token, len(collected))
	for i, t := range collected {
		reversed[len(collected)-1-i] = t
	}
	return token.NewIndirectExpression(reversed), nil
}
