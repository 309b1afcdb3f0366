package token

import (
	"regexp"
	"strconv"
)

// Grounded on assembler/number_parser.rs: hex/binary/decimal patterns,
// each tried in turn, any one of which yields a signed integer.
var (
	hexSuffixRe = regexp.MustCompile(`^0[0-9a-fA-F]+[hH]$`)
	hexPrefixRe = regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`)
	hexDollarRe = regexp.MustCompile(`^\$[0-9a-fA-F]+$`)
	binSuffixRe = regexp.MustCompile(`^[01]+[bB]$`)
	binPrefixRe = regexp.MustCompile(`^0[bB][01]+$`)
	binPercentRe = regexp.MustCompile(`^%[01]+$`)
	decimalRe    = regexp.MustCompile(`^[0-9]+$`)
)

// ParseNumber recognises the decimal/hex/binary literal forms of §4.2 and
// returns the parsed signed value. ok is false when s matches none of them.
func ParseNumber(s string) (value int64, ok bool) {
	switch {
	case hexSuffixRe.MatchString(s):
		n, err := strconv.ParseInt(s[:len(s)-1], 16, 64)
		return n, err == nil
	case hexPrefixRe.MatchString(s):
		n, err := strconv.ParseInt(s[2:], 16, 64)
		return n, err == nil
	case hexDollarRe.MatchString(s):
		n, err := strconv.ParseInt(s[1:], 16, 64)
		return n, err == nil
	case binPrefixRe.MatchString(s):
		n, err := strconv.ParseInt(s[2:], 2, 64)
		return n, err == nil
	case binPercentRe.MatchString(s):
		n, err := strconv.ParseInt(s[1:], 2, 64)
		return n, err == nil
	case binSuffixRe.MatchString(s):
		n, err := strconv.ParseInt(s[:len(s)-1], 2, 64)
		return n, err == nil
	case decimalRe.MatchString(s):
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
