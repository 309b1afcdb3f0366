package compile

import "zasm/compiler/token"

// Shared token-stack helpers used by the directive/enum/struct
// handlers, all operating on a statement's reverse-ordered remaining
// tokens (see expr package's doc comment on the convention): popOne
// pops the next token to process, peek reads it without consuming it.

func popOne(tokens *[]token.Token) token.Token {
	n := len(*tokens)
	t := (*tokens)[n-1]
	*tokens = (*tokens)[:n-1]
	return t
}

func peek(tokens []token.Token) token.Token {
	if len(tokens) == 0 {
		return token.EndOfFile()
	}
	return tokens[len(tokens)-1]
}

// nextIsDirective reports whether the next token to process is the
// given directive, without consuming it.
func nextIsDirective(tokens *[]token.Token, d token.Directive) bool {
	t := peek(*tokens)
	return t.Kind == token.KindDirective && t.Directive == d
}

// takeConstLabel pops the next token, reporting it (and true) only if
// it is a ConstLabel.
func takeConstLabel(tokens *[]token.Token) (string, bool) {
	if len(*tokens) == 0 {
		return "", false
	}
	t := popOne(tokens)
	if t.Kind != token.KindConstLabel {
		return "", false
	}
	return t.Text, true
}

// reverseTokens returns a line's tokens reversed, converting between the
// lexer's forward reading order and the reverse-ordered tail-pop
// convention the rest of this package shares with expr/encoder/macro.
func reverseTokens(toks []token.Token) []token.Token {
	n := len(toks)
	out := make([]token.Token, n)
	for i, t := range toks {
		out[n-1-i] = t
	}
	return out
}
