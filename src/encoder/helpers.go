// Package encoder implements the Z80/Z80N/CSpect instruction encoder
// (§2-C8, §4.7): given an opcode token and its remaining operand tokens,
// it emits the matching byte sequence, consulting the expression engine
// for any operand that needs evaluating and the context for PC tracking
// and forward-reference deferral. Grounded on instruction_encoder.rs,
// emitter.rs, assembler_impl.rs's handle_opcodes/encode_z80n/encode_cspect
// and macros.rs's bit-field helpers.
package encoder

import "zasm/compiler/token"

// XYZ packs the x/y/z octal fields of a one-byte opcode (macros.rs's xyz!).
func XYZ(x, y, z uint8) byte {
	return byte((x&3)<<6 | (y&7)<<3 | (z & 7))
}

// XPQZ packs the x/p/q/z octal fields of a one-byte opcode (macros.rs's xpqz!).
func XPQZ(x, p, q, z uint8) byte {
	return byte((x&3)<<6 | (p&3)<<4 | (q&1)<<3 | (z & 7))
}

// ALU packs an 8-bit-register ALU opcode (macros.rs's alu!).
func ALU(op token.AluOp, r uint8) byte {
	return byte(2<<6 | (uint8(op)&7)<<3 | r&7)
}

// ALUImm packs an ALU-immediate opcode (macros.rs's alu_imm!).
func ALUImm(op token.AluOp) byte {
	return byte(3<<6 | uint8(op)<<3 | 6)
}

// RotEncode packs a CB-prefixed shift/rotate opcode (macros.rs's rot_encode!).
func RotEncode(op token.RotOp, r uint8) byte {
	return byte(uint8(op)&7<<3 | r&7)
}

func lo(word int) byte { return byte(word & 0xff) }
func hi(word int) byte { return byte((word >> 8) & 0xff) }
