package token

import "strings"

// Directive is a preprocessor/assembler directive keyword (§4.5).
type Directive uint8

const (
	DirOrg Directive = iota
	DirInclude
	DirBinary // INCBIN
	DirMessage
	DirByte // DB/DEFB/BYTE
	DirWord // DW/DEFW/WORD
	DirBlock // DS/BLOCK
	DirHex   // DH/HEX
	DirStringZero // DZ
	DirOpt        // !OPT / #PRAGMA
	DirMacro
	DirEnd // END/ENDM
	DirIf
	DirIfDef
	DirIfNotDef
	DirElse
	DirEndIf
	DirGlobal
	DirDefine
	DirEnum
	DirEndEnum
	DirStruct
	DirEndStruct
)

// DirectiveFromString resolves a directive keyword. Matching is
// case-insensitive, mirroring every other keyword class in the tokenizer.
func DirectiveFromString(s string) (Directive, bool) {
	switch strings.ToLower(s) {
	case "org":
		return DirOrg, true
	case "include":
		return DirInclude, true
	case "binary", "incbin":
		return DirBinary, true
	case "!message":
		return DirMessage, true
	case "db", "defb", "byte":
		return DirByte, true
	case "dw", "defw", "word":
		return DirWord, true
	case "ds", "block":
		return DirBlock, true
	case "dh", "hex":
		return DirHex, true
	case "dz":
		return DirStringZero, true
	case "!opt", "#pragma":
		return DirOpt, true
	case "macro":
		return DirMacro, true
	case "end", "endm":
		return DirEnd, true
	case "#if", "if":
		return DirIf, true
	case "#ifdef", "ifdef":
		return DirIfDef, true
	case "#ifndef", "ifndef":
		return DirIfNotDef, true
	case "#else", "else":
		return DirElse, true
	case "#endif", "endif":
		return DirEndIf, true
	case "global":
		return DirGlobal, true
	case "#define":
		return DirDefine, true
	case "enum":
		return DirEnum, true
	case "ende":
		return DirEndEnum, true
	case "struct":
		return DirStruct, true
	case "ends":
		return DirEndStruct, true
	default:
		return 0, false
	}
}

func (d Directive) String() string {
	switch d {
	case DirOrg:
		return "ORG"
	case DirInclude:
		return "INCLUDE"
	case DirBinary:
		return "INCBIN"
	case DirMessage:
		return "!MESSAGE"
	case DirByte:
		return "DB"
	case DirWord:
		return "DW"
	case DirBlock:
		return "DS"
	case DirHex:
		return "DH"
	case DirStringZero:
		return "DZ"
	case DirOpt:
		return "!OPT"
	case DirMacro:
		return "MACRO"
	case DirEnd:
		return "END"
	case DirIf:
		return "IF"
	case DirIfDef:
		return "IFDEF"
	case DirIfNotDef:
		return "IFNDEF"
	case DirElse:
		return "ELSE"
	case DirEndIf:
		return "ENDIF"
	case DirGlobal:
		return "GLOBAL"
	case DirDefine:
		return "#DEFINE"
	case DirEnum:
		return "ENUM"
	case DirEndEnum:
		return "ENDE"
	case DirStruct:
		return "STRUCT"
	case DirEndStruct:
		return "ENDS"
	default:
		return "?"
	}
}
