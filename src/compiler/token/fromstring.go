package token

import (
	"regexp"
	"strings"
)

// labelRe matches a bare label/const-label word: an optional leading dot
// (local label), one or more dot-separated groups of word characters
// (STRUCT member suffixes like "y.w", ENUM member access like
// "Colors.Green"), then an optional trailing colon.
var labelRe = regexp.MustCompile(`^\.?\w*(\.\w+)*:?$`)

// FromString classifies a single raw word produced by the line splitter
// into a Token, in the exact priority order of §4.1 step 7 (grounded on
// token_traits.rs Tokens::from_string): quoted literal, directive, opcode,
// number, register-pair, register, I/R register, delimiter, operator,
// IX/IY half-register, condition, option, boolean, label. Anything
// matching none of these is Invalid.
func FromString(word string) Token {
	isDoubleQuoted := strings.HasPrefix(word, `"`) && strings.HasSuffix(word, `"`) && len(word) >= 2
	isSingleQuoted := strings.HasPrefix(word, `'`) && strings.HasSuffix(word, `'`) && len(word) >= 2

	if isSingleQuoted && len([]rune(word)) == 3 {
		zx := ZXSafe(word)
		runes := []rune(zx)
		if len(runes) == 3 {
			return NewNumber(int64(byte(runes[1])))
		}
	}

	if isSingleQuoted || isDoubleQuoted {
		inner := word[1 : len(word)-1]
		return NewStringLiteral(inner)
	}

	w := strings.ToLower(word)

	if d, ok := DirectiveFromString(w); ok {
		return NewDirective(d)
	}
	if o, ok := OpCodeFromString(w); ok {
		return NewOpCode(o)
	}
	if n, ok := ParseNumber(word); ok {
		return NewNumber(n)
	}
	if rp, ok := regPairFromString(w); ok {
		return NewRegisterPair(rp)
	}
	if r, ok := regFromString(w); ok {
		return NewRegister(r)
	}
	if ir, ok := irFromString(w); ok {
		return NewRegisterIR(ir)
	}
	if delimiterFromString(w) {
		return NewDelimiter()
	}
	if op, ok := opFromString(w); ok {
		return NewOperator(op)
	}
	if ixu, ok := ixHalfFromString(w); ok {
		return NewRegisterIX(ixu)
	}
	if iyu, ok := iyHalfFromString(w); ok {
		return NewRegisterIY(iyu)
	}
	if cnd, ok := cndFromString(w); ok {
		return NewCondition(cnd)
	}
	if opt, ok := optionKindFromString(w); ok {
		return NewOpt(opt)
	}
	if b, ok := boolFromString(w); ok {
		return NewBoolean(b)
	}
	if labelRe.MatchString(word) {
		return NewConstLabel(word)
	}

	return Invalid()
}
