package token

import "strings"

// ZXSafe rewrites the three ZX Spectrum character-set substitutions
// described in §6 and returns the result. Grounded on zx_ascii.rs.
func ZXSafe(s string) string {
	r := strings.NewReplacer(
		"£", "`",
		"©", "\x7f",
		"↑", "^",
	)
	return r.Replace(s)
}

// IsASCIISafe reports whether every rune in s is 7-bit ASCII after the
// ZX-safe remap; a string literal containing anything else is fatal (§6).
func IsASCIISafe(s string) bool {
	for _, r := range s {
		if r > 0x7f {
			return false
		}
	}
	return true
}
