package token

import "strings"

// Reg is the classic 3-bit Z80 register index: B,C,D,E,H,L,(HL),A.
type Reg uint8

const (
	RegB Reg = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegHLInd
	RegA
)

func regFromString(s string) (Reg, bool) {
	switch strings.ToLower(s) {
	case "b":
		return RegB, true
	case "c":
		return RegC, true
	case "d":
		return RegD, true
	case "e":
		return RegE, true
	case "h":
		return RegH, true
	case "l":
		return RegL, true
	case "a":
		return RegA, true
	default:
		return 0, false
	}
}

// RegPair is the 3-bit Z80 register-pair index used by most x/p/q/z forms.
type RegPair uint8

const (
	RPBC RegPair = iota
	RPDE
	RPHL
	RPSP
	RPIX
	RPIY
	RPAF
	RPAFPrime
)

func regPairFromString(s string) (RegPair, bool) {
	switch strings.ToLower(s) {
	case "bc":
		return RPBC, true
	case "de":
		return RPDE, true
	case "hl":
		return RPHL, true
	case "sp":
		return RPSP, true
	case "ix":
		return RPIX, true
	case "iy":
		return RPIY, true
	case "af":
		return RPAF, true
	case "af'":
		return RPAFPrime, true
	default:
		return 0, false
	}
}

// RP1 is the register-pair selector used by the BC/DE/HL/SP family of
// encodings (p in x/p/q/z), folding IX/IY onto the HL slot.
func (r RegPair) RP1() (uint8, bool) {
	switch r {
	case RPBC:
		return 0, true
	case RPDE:
		return 1, true
	case RPHL, RPIX, RPIY:
		return 2, true
	case RPSP:
		return 3, true
	default:
		return 0, false
	}
}

// RP2 is the register-pair selector used by PUSH/POP (AF instead of SP).
func (r RegPair) RP2() (uint8, bool) {
	switch r {
	case RPBC:
		return 0, true
	case RPDE:
		return 1, true
	case RPHL, RPIX, RPIY:
		return 2, true
	case RPAF:
		return 3, true
	default:
		return 0, false
	}
}

// NRP is the Z80N register-pair selector for the ED 0x30-range ALU forms
// (BC=0, DE=1, HL=2).
func (r RegPair) NRP() (uint8, bool) {
	switch r {
	case RPBC:
		return 0, true
	case RPDE:
		return 1, true
	case RPHL:
		return 2, true
	default:
		return 0, false
	}
}

// RegPairInd is a register pair usable only in an indirect position: (BC),
// (DE), (SP), (C).
type RegPairInd uint8

const (
	RPIndBC RegPairInd = iota
	RPIndDE
	RPIndSP
	RPIndC
)

// IxHalf / IyHalf are the undocumented 8-bit halves of IX/IY.
type IxHalf uint8

const (
	IXH IxHalf = 4
	IXL IxHalf = 5
)

func ixHalfFromString(s string) (IxHalf, bool) {
	switch strings.ToLower(s) {
	case "ixh":
		return IXH, true
	case "ixl":
		return IXL, true
	default:
		return 0, false
	}
}

type IyHalf uint8

const (
	IYH IyHalf = 4
	IYL IyHalf = 5
)

func iyHalfFromString(s string) (IyHalf, bool) {
	switch strings.ToLower(s) {
	case "iyh":
		return IYH, true
	case "iyl":
		return IYL, true
	default:
		return 0, false
	}
}

// IR selects the I or R special register.
type IR uint8

const (
	RegI IR = 8
	RegR IR = 9
)

func irFromString(s string) (IR, bool) {
	switch strings.ToLower(s) {
	case "i":
		return RegI, true
	case "r":
		return RegR, true
	default:
		return 0, false
	}
}

// Cnd is a branch condition code.
type Cnd uint8

const (
	CndNZ Cnd = iota
	CndZ
	CndNC
	CndC
	CndPO
	CndPE
	CndP
	CndM
)

func cndFromString(s string) (Cnd, bool) {
	switch strings.ToLower(s) {
	case "nz":
		return CndNZ, true
	case "z":
		return CndZ, true
	case "nc":
		return CndNC, true
	case "c":
		return CndC, true
	case "po":
		return CndPO, true
	case "pe":
		return CndPE, true
	case "p":
		return CndP, true
	case "m":
		return CndM, true
	default:
		return 0, false
	}
}

// CanBeJRCondition reports whether c is one of the four conditions JR/DJNZ accept.
func (c Cnd) CanBeJRCondition() bool {
	switch c {
	case CndZ, CndNZ, CndC, CndNC:
		return true
	default:
		return false
	}
}

// AluOp is the 3-bit selector for the 8-bit ALU instruction group.
type AluOp uint8

const (
	AluAdd AluOp = iota
	AluAdc
	AluSub
	AluSbc
	AluAnd
	AluXor
	AluOr
	AluCp
)

func aluOpFromString(s string) (AluOp, bool) {
	switch strings.ToLower(s) {
	case "add":
		return AluAdd, true
	case "adc":
		return AluAdc, true
	case "sub":
		return AluSub, true
	case "sbc":
		return AluSbc, true
	case "and":
		return AluAnd, true
	case "xor":
		return AluXor, true
	case "or":
		return AluOr, true
	case "cp":
		return AluCp, true
	default:
		return 0, false
	}
}

// RotOp is the 3-bit selector for the CB-prefixed shift/rotate group.
type RotOp uint8

const (
	RotRlc RotOp = iota
	RotRrc
	RotRl
	RotRr
	RotSla
	RotSra
	RotSll
	RotSrl
)

func rotOpFromString(s string) (RotOp, bool) {
	switch strings.ToLower(s) {
	case "rlc":
		return RotRlc, true
	case "rrc":
		return RotRrc, true
	case "rl":
		return RotRl, true
	case "rr":
		return RotRr, true
	case "sla":
		return RotSla, true
	case "sra":
		return RotSra, true
	case "sll":
		return RotSll, true
	case "srl":
		return RotSrl, true
	default:
		return 0, false
	}
}
