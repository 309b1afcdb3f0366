// Package asmctx holds the mutable state threaded through both assembly
// passes (§2-C4): labels, constants, struct layouts, the forward-reference
// backlog and the growing output buffer. It is grounded on
// assembler_context.rs/assembler_context_impl.rs and bank_impl.rs.
package asmctx

import "zasm/compiler/token"

// ForwardReference records an operand that could not be evaluated during
// pass 1 because it named a label or SIZEOF not yet defined. Pass 2 replays
// the expression with the now-complete symbol table and patches the bytes
// already emitted at Pc (grounded on expression.rs's ExpressionParser::parse).
type ForwardReference struct {
	IsExpression bool
	Pc           int
	Label        string
	Expression   []token.Token
	IsRelative   bool
	ByteCount    int
	LineNo       int
	FileName     string
}
