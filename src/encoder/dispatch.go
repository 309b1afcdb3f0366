package encoder

import "zasm/compiler/token"

// Encode dispatches a classified opcode token against the Encoder's
// current Tokens, emitting its bytes (or deferring an operand to a
// forward reference). Grounded on assembler_impl.rs's handle_opcodes.
func (e *Encoder) Encode(op token.OpCode) error {
	switch op {
	case token.OpNop:
		return e.EmitByte(0)
	case token.OpAdc:
		return e.AluOpR(token.AluAdc, 1, 0)
	case token.OpAdd:
		return e.AluOpR(token.AluAdd, 0, 1)
	case token.OpAnd:
		return e.AluOp(token.AluAnd)
	case token.OpBit:
		return e.BitResSet(1)
	case token.OpCall:
		return e.CallJp(1, 5)
	case token.OpCcf:
		return e.EmitByte(0x3F)
	case token.OpCp:
		return e.AluOp(token.AluCp)
	case token.OpCpd:
		return e.Emit(0xED, 0xA9)
	case token.OpCpdr:
		return e.Emit(0xED, 0xB9)
	case token.OpCpi:
		return e.Emit(0xED, 0xA1)
	case token.OpCpir:
		return e.Emit(0xED, 0xB1)
	case token.OpCpl:
		return e.EmitByte(0x2F)
	case token.OpDaa:
		return e.EmitByte(0x27)
	case token.OpDec:
		return e.IncDec(1)
	case token.OpDi:
		return e.EmitByte(0xF3)
	case token.OpDjnz:
		return e.Jr(true)
	case token.OpEi:
		return e.EmitByte(0xFB)
	case token.OpEx:
		return e.Ex()
	case token.OpExx:
		return e.EmitByte(0xD9)
	case token.OpHalt:
		return e.EmitByte(0x76)
	case token.OpIm:
		return e.Im()
	case token.OpIn:
		return e.IoOp(3)
	case token.OpInc:
		return e.IncDec(0)
	case token.OpInd:
		return e.Emit(0xED, 0xAA)
	case token.OpIndr:
		return e.Emit(0xED, 0xBA)
	case token.OpIni:
		return e.Emit(0xED, 0xA2)
	case token.OpInir:
		return e.Emit(0xED, 0xB2)
	case token.OpJr:
		return e.Jr(false)
	case token.OpJp:
		return e.Jp()
	case token.OpLd:
		return e.Load()
	case token.OpLdd:
		return e.Emit(0xED, 0xA8)
	case token.OpLddr:
		return e.Emit(0xED, 0xB8)
	case token.OpLdi:
		return e.Emit(0xED, 0xA0)
	case token.OpLdir:
		return e.Emit(0xED, 0xB0)
	case token.OpNeg:
		return e.Emit(0xED, 0x44)
	case token.OpOr:
		return e.AluOp(token.AluOr)
	case token.OpOtdr:
		return e.Emit(0xED, 0xBB)
	case token.OpOtir:
		return e.Emit(0xED, 0xB3)
	case token.OpOut:
		return e.IoOp(2)
	case token.OpOutd:
		return e.Emit(0xED, 0xAB)
	case token.OpOuti:
		return e.Emit(0xED, 0xA3)
	case token.OpPop:
		return e.PushPop(1)
	case token.OpPush:
		return e.PushPop(5)
	case token.OpRes:
		return e.BitResSet(2)
	case token.OpRet:
		return e.Ret()
	case token.OpReti:
		return e.Emit(0xED, 0x4D)
	case token.OpRetn:
		return e.Emit(0xED, 0x45)
	case token.OpRl:
		return e.Rot(token.RotRl)
	case token.OpRla:
		return e.EmitByte(0x17)
	case token.OpRlc:
		return e.Rot(token.RotRlc)
	case token.OpRlca:
		return e.EmitByte(0x07)
	case token.OpRld:
		return e.Emit(0xED, 0x6F)
	case token.OpRr:
		return e.Rot(token.RotRr)
	case token.OpRra:
		return e.EmitByte(0x1F)
	case token.OpRrc:
		return e.Rot(token.RotRrc)
	case token.OpRrca:
		return e.EmitByte(0x0F)
	case token.OpRrd:
		return e.Emit(0xED, 0x67)
	case token.OpRst:
		return e.Rst()
	case token.OpSbc:
		return e.AluOpR(token.AluSbc, 1, 1)
	case token.OpScf:
		return e.EmitByte(0x37)
	case token.OpSet:
		return e.BitResSet(3)
	case token.OpSla:
		return e.Rot(token.RotSla)
	case token.OpSll:
		return e.Rot(token.RotSll)
	case token.OpSra:
		return e.Rot(token.RotSra)
	case token.OpSrl:
		return e.Rot(token.RotSrl)
	case token.OpSub:
		return e.AluOp(token.AluSub)
	case token.OpXor:
		return e.AluOp(token.AluXor)
	default:
		if op.IsZ80N() {
			return e.encodeZ80N(op)
		}
		if op.IsCSpect() {
			return e.encodeCSpect(op)
		}
		return e.fatalf("unrecognised opcode")
	}
}

// encodeZ80N encodes the fixed-byte Z80N extension opcodes, gated on
// Z80NEnabled, grounded on encode_z80n.
func (e *Encoder) encodeZ80N(op token.OpCode) error {
	switch op {
	case token.OpMul:
		return e.Mul()
	case token.OpNextreg:
		return e.NextReg()
	case token.OpTest:
		if !e.Z80NEnabled {
			return e.fatalf("Z80N extensions are disabled")
		}
		n, err := e.ExpectByte(2)
		if err != nil {
			return err
		}
		return e.Emit(0xED, 0x27, byte(n))
	}

	var code []byte
	switch op {
	case token.OpLdix:
		code = []byte{0xED, 0xA4}
	case token.OpLdws:
		code = []byte{0xED, 0xA5}
	case token.OpLdirx:
		code = []byte{0xED, 0xB4}
	case token.OpLddx:
		code = []byte{0xED, 0xAC}
	case token.OpLddrx:
		code = []byte{0xED, 0xBC}
	case token.OpLdpirx:
		code = []byte{0xED, 0xB7}
	case token.OpOutinb:
		code = []byte{0xED, 0x90}
	case token.OpSwapnib:
		code = []byte{0xED, 0x23}
	case token.OpMirror:
		code = []byte{0xED, 0x24}
	case token.OpPixeldn:
		code = []byte{0xED, 0x93}
	case token.OpPixelad:
		code = []byte{0xED, 0x94}
	case token.OpSetae:
		code = []byte{0xED, 0x95}
	case token.OpBsla:
		code = []byte{0xED, 0x28}
	case token.OpBsra:
		code = []byte{0xED, 0x29}
	case token.OpBsrl:
		code = []byte{0xED, 0x2A}
	case token.OpBsrf:
		code = []byte{0xED, 0x2B}
	case token.OpBrlc:
		code = []byte{0xED, 0x2C}
	default:
		return e.fatalf("unrecognised opcode")
	}
	if !e.Z80NEnabled {
		return e.fatalf("Z80N extensions are disabled")
	}
	return e.Emit(code...)
}

// encodeCSpect encodes the two CSpect debugger pseudo-ops, gated on
// CSpectEnabled, grounded on encode_cspect.
func (e *Encoder) encodeCSpect(op token.OpCode) error {
	var code []byte
	switch op {
	case token.OpBreak:
		code = []byte{0xDD, 0x01}
	case token.OpExit:
		code = []byte{0xDD, 0x00}
	default:
		return e.fatalf("unrecognised opcode")
	}
	if !e.CSpectEnabled {
		return e.fatalf("CSpect extensions are disabled")
	}
	return e.Emit(code...)
}
