package token

import "strings"

// OpCode is the closed set of mnemonics the encoder (C8) understands: the
// full documented Z80 set, the Z80N extensions and the two CSpect
// pseudo-ops, gated at encode time on the assembler's capability flags.
type OpCode uint16

const (
	OpNop OpCode = iota
	OpAdc
	OpAdd
	OpAnd
	OpBit
	OpCall
	OpCcf
	OpCp
	OpCpd
	OpCpdr
	OpCpi
	OpCpir
	OpCpl
	OpDaa
	OpDec
	OpDi
	OpDjnz
	OpEi
	OpEx
	OpExx
	OpHalt
	OpIm
	OpIn
	OpInc
	OpInd
	OpIndr
	OpIni
	OpInir
	OpJr
	OpJp
	OpLd
	OpLdd
	OpLddr
	OpLdi
	OpLdir
	OpNeg
	OpOr
	OpOtdr
	OpOtir
	OpOut
	OpOutd
	OpOuti
	OpPop
	OpPush
	OpRes
	OpRet
	OpReti
	OpRetn
	OpRl
	OpRla
	OpRlc
	OpRlca
	OpRld
	OpRr
	OpRra
	OpRrc
	OpRrca
	OpRrd
	OpRst
	OpSbc
	OpScf
	OpSet
	OpSla
	OpSll
	OpSra
	OpSrl
	OpSub
	OpXor

	// Z80N extensions.
	OpLdix
	OpLdws
	OpLdirx
	OpLddx
	OpLddrx
	OpLdpirx
	OpOutinb
	OpMul
	OpSwapnib
	OpMirror
	OpNextreg
	OpPixeldn
	OpPixelad
	OpSetae
	OpTest
	OpBsla
	OpBsra
	OpBsrl
	OpBsrf
	OpBrlc

	// CSpect extensions.
	OpBreak
	OpExit
)

// OpCodeFromString resolves a mnemonic to its OpCode. Z80N/CSpect
// membership (and whether the opcode is actually permitted) is checked
// later by the encoder against the active Options, not here: recognising
// the word is purely lexical.
func OpCodeFromString(s string) (OpCode, bool) {
	switch strings.ToLower(s) {
	case "nop":
		return OpNop, true
	case "adc":
		return OpAdc, true
	case "add":
		return OpAdd, true
	case "and":
		return OpAnd, true
	case "bit":
		return OpBit, true
	case "call":
		return OpCall, true
	case "ccf":
		return OpCcf, true
	case "cp":
		return OpCp, true
	case "cpd":
		return OpCpd, true
	case "cpdr":
		return OpCpdr, true
	case "cpi":
		return OpCpi, true
	case "cpir":
		return OpCpir, true
	case "cpl":
		return OpCpl, true
	case "daa":
		return OpDaa, true
	case "dec":
		return OpDec, true
	case "di":
		return OpDi, true
	case "djnz":
		return OpDjnz, true
	case "ei":
		return OpEi, true
	case "ex":
		return OpEx, true
	case "exx":
		return OpExx, true
	case "halt":
		return OpHalt, true
	case "im":
		return OpIm, true
	case "in":
		return OpIn, true
	case "inc":
		return OpInc, true
	case "ind":
		return OpInd, true
	case "indr":
		return OpIndr, true
	case "ini":
		return OpIni, true
	case "inir":
		return OpInir, true
	case "jr":
		return OpJr, true
	case "jp":
		return OpJp, true
	case "ld":
		return OpLd, true
	case "ldd":
		return OpLdd, true
	case "lddr":
		return OpLddr, true
	case "ldi":
		return OpLdi, true
	case "ldir":
		return OpLdir, true
	case "neg":
		return OpNeg, true
	case "or":
		return OpOr, true
	case "otdr":
		return OpOtdr, true
	case "otir":
		return OpOtir, true
	case "out":
		return OpOut, true
	case "outd":
		return OpOutd, true
	case "outi":
		return OpOuti, true
	case "pop":
		return OpPop, true
	case "push":
		return OpPush, true
	case "res":
		return OpRes, true
	case "ret":
		return OpRet, true
	case "reti":
		return OpReti, true
	case "retn":
		return OpRetn, true
	case "rl":
		return OpRl, true
	case "rla":
		return OpRla, true
	case "rlc":
		return OpRlc, true
	case "rlca":
		return OpRlca, true
	case "rld":
		return OpRld, true
	case "rr":
		return OpRr, true
	case "rra":
		return OpRra, true
	case "rrc":
		return OpRrc, true
	case "rrca":
		return OpRrca, true
	case "rrd":
		return OpRrd, true
	case "rst":
		return OpRst, true
	case "sbc":
		return OpSbc, true
	case "scf":
		return OpScf, true
	case "set":
		return OpSet, true
	case "sla":
		return OpSla, true
	case "sll":
		return OpSll, true
	case "sra":
		return OpSra, true
	case "srl":
		return OpSrl, true
	case "sub":
		return OpSub, true
	case "xor":
		return OpXor, true

	// Z80N.
	case "ldix":
		return OpLdix, true
	case "ldws":
		return OpLdws, true
	case "ldirx":
		return OpLdirx, true
	case "lddx":
		return OpLddx, true
	case "lddrx":
		return OpLddrx, true
	case "ldpirx":
		return OpLdpirx, true
	case "outinb":
		return OpOutinb, true
	case "mul":
		return OpMul, true
	case "swapnib":
		return OpSwapnib, true
	case "mirror":
		return OpMirror, true
	case "nextreg":
		return OpNextreg, true
	case "pixeldn":
		return OpPixeldn, true
	case "pixelad":
		return OpPixelad, true
	case "setae":
		return OpSetae, true
	case "test":
		return OpTest, true
	case "bsla":
		return OpBsla, true
	case "bsra":
		return OpBsra, true
	case "bsrl":
		return OpBsrl, true
	case "bsrf":
		return OpBsrf, true
	case "brlc":
		return OpBrlc, true

	// CSpect.
	case "break":
		return OpBreak, true
	case "exit":
		return OpExit, true

	default:
		return 0, false
	}
}

// IsZ80N reports whether op belongs to the Z80N extension set and so must
// be gated on Options.Z80N.
func (op OpCode) IsZ80N() bool {
	return op >= OpLdix && op <= OpBrlc
}

// IsCSpect reports whether op is a CSpect pseudo-op, gated on Options.CSpect.
func (op OpCode) IsCSpect() bool {
	return op == OpBreak || op == OpExit
}
