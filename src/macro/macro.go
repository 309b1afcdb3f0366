// Package macro implements MACRO/ENDM collection and expansion (C7),
// grounded on macro_impl.rs's MacroHandler.
package macro

import (
	"zasm/asmctx"
	"zasm/compiler/token"
)

// definition is one collected macro body: its formal parameter names, in
// declaration order, and its lines of tokens with each ConstLabel that
// names a parameter already rewritten to a MacroParam placeholder.
// Grounded on macro_impl.rs's Macro.
type definition struct {
	params []string
	lines  [][]token.Token
}

// expansion holds one in-progress substitution: the actual argument
// tokens bound to each parameter name, and the macro body's lines
// rewritten with those arguments spliced in, ready to replay through the
// translator one line at a time. Grounded on macro_impl.rs's
// MacroExpansion.
type expansion struct {
	args  map[string][]token.Token
	lines [][]token.Token
}

// Handler collects macro definitions and expands macro invocations,
// grounded on macro_impl.rs's MacroHandler.
type Handler struct {
	collecting     bool
	collectingName string
	macros         map[string]*definition
	expanding      expansion
	defines        map[string][]token.Token
}

// New returns an empty Handler.
func New() *Handler {
	return &Handler{macros: map[string]*definition{}, defines: map[string][]token.Token{}}
}

// Collecting reports whether a MACRO body is currently being gathered
// (ENDM not yet seen).
func (h *Handler) Collecting() bool { return h.collecting }

// IsMacro reports whether name was previously defined with MACRO.
func (h *Handler) IsMacro(name string) bool {
	_, ok := h.macros[name]
	return ok
}

// IsDefined reports whether name was previously bound with #define.
func (h *Handler) IsDefined(name string) bool {
	_, ok := h.defines[name]
	return ok
}

// AddDefine binds name to the remainder of its #define line (tokens, in
// the usual reverse-reading order), for later verbatim substitution by
// ExpandDefines. #define has no counterpart found in the reference
// sources available for this port (only MACRO/ENDM's
// collect/begin_collect/end_collect/parse_macro/expand_macro were
// located); this is a from-scratch zero-argument text-substitution
// design built to the same reverse-order token-stack convention as the
// rest of this package, not a line-for-line port.
func (h *Handler) AddDefine(name string, tokens []token.Token) error {
	h.defines[name] = reverseTokens(tokens)
	return nil
}

// ExpandDefines returns line (given in reverse-reading order) with every
// ConstLabel naming a #define substituted for its bound tokens, one pass
// (no recursive re-expansion of a #define's own body).
func (h *Handler) ExpandDefines(line []token.Token) []token.Token {
	if len(h.defines) == 0 {
		return line
	}
	forward := reverseTokens(line)
	out := make([]token.Token, 0, len(forward))
	for _, t := range forward {
		if t.Kind == token.KindConstLabel {
			if def, ok := h.defines[t.Text]; ok {
				out = append(out, def...)
				continue
			}
		}
		out = append(out, t)
	}
	return reverseTokens(out)
}

func reverseTokens(toks []token.Token) []token.Token {
	n := len(toks)
	out := make([]token.Token, n)
	for i, t := range toks {
		out[n-1-i] = t
	}
	return out
}

// Collect appends one source line's tokens to the macro currently being
// defined, substituting each ConstLabel that names one of its formal
// parameters with a MacroParam placeholder. tokens is consumed in
// reverse-reading order by popping from its tail, so the stored line is in
// forward reading order; ParseMacro reverses it again while substituting.
// Grounded on MacroHandler::collect.
func (h *Handler) Collect(ctx *asmctx.Context, tokens *[]token.Token) error {
	if !h.collecting {
		return ctx.Fatalf("ENDM without matching MACRO")
	}
	m := h.macros[h.collectingName]
	line := make([]token.Token, 0, len(*tokens))
	for len(*tokens) > 0 {
		t := pop(tokens)
		if t.Kind == token.KindConstLabel && contains(m.params, t.Text) {
			line = append(line, token.NewMacroParam(t.Text))
		} else {
			line = append(line, t)
		}
	}
	m.lines = append(m.lines, line)
	ctx.NextLine()
	return nil
}

// ParseMacro binds name's invocation arguments (the remaining tokens of
// the calling line, comma-separated expression runs) to its formal
// parameters, then substitutes them into the macro's stored body,
// producing each expanded line in reverse-reading order and storing the
// lines last line first, so that Expand, popping from the end, replays
// the first line first. Grounded on MacroHandler::parse_macro.
func (h *Handler) ParseMacro(ctx *asmctx.Context, name string, tokens *[]token.Token) error {
	mac, ok := h.macros[name]
	if !ok {
		return ctx.Fatalf("unknown macro %q", name)
	}

	args := map[string][]token.Token{}
	paramIdx := 0
	var arg []token.Token
	for len(*tokens) > 0 {
		t := pop(tokens)
		switch {
		case t.Kind == token.KindDelimiter:
			if paramIdx >= len(mac.params) {
				return ctx.Fatalf("too many macro arguments")
			}
			args[mac.params[paramIdx]] = arg
			arg = nil
			paramIdx++
		case t.IsExpressionClass():
			arg = append(arg, t)
		default:
			return ctx.Fatalf("bad expression in macro argument")
		}
	}
	if paramIdx >= len(mac.params) {
		return ctx.Fatalf("too many macro arguments")
	}
	args[mac.params[paramIdx]] = arg
	paramIdx++

	if paramIdx != len(mac.params) {
		return ctx.Fatalf("macro %q expects %d argument(s), got %d", name, len(mac.params), paramIdx)
	}

	h.expanding = expansion{args: args}
	for i := len(mac.lines) - 1; i >= 0; i-- {
		line := mac.lines[i]
		newLine := make([]token.Token, 0, len(line))
		for j := len(line) - 1; j >= 0; j-- {
			tok := line[j]
			if tok.Kind == token.KindMacroParam {
				arg := args[tok.Text]
				for k := len(arg) - 1; k >= 0; k-- {
					newLine = append(newLine, arg[k])
				}
			} else {
				newLine = append(newLine, tok)
			}
		}
		h.expanding.lines = append(h.expanding.lines, newLine)
	}
	return nil
}

// Expand pops the next expanded line (in replay order), or reports false
// once the invocation has been fully replayed. Grounded on
// MacroHandler::expand_macro.
func (h *Handler) Expand() ([]token.Token, bool) {
	n := len(h.expanding.lines)
	if n == 0 {
		return nil, false
	}
	line := h.expanding.lines[n-1]
	h.expanding.lines = h.expanding.lines[:n-1]
	return line, true
}

// BeginCollect starts collecting a new macro named by the first token of
// tokens, with the remaining tokens (ConstLabel, comma-separated) as its
// formal parameter list. Grounded on MacroHandler::begin_collect.
func (h *Handler) BeginCollect(ctx *asmctx.Context, tokens *[]token.Token) error {
	if h.collecting {
		return ctx.Fatalf("MACRO definitions cannot nest")
	}
	if len(*tokens) == 0 {
		return ctx.Fatalf("macro name expected")
	}
	nameTok := pop(tokens)
	if nameTok.Kind != token.KindConstLabel {
		return ctx.Fatalf("macro name expected")
	}
	if h.IsMacro(nameTok.Text) {
		return ctx.Fatalf("macro %q already defined", nameTok.Text)
	}

	var params []string
	expectComma := false
	for len(*tokens) > 0 {
		t := pop(tokens)
		switch {
		case !expectComma && t.Kind == token.KindConstLabel:
			params = append(params, t.Text)
		case !expectComma && t.Kind == token.KindDelimiter:
			return ctx.Fatalf("comma expected")
		case expectComma && t.Kind == token.KindDelimiter:
			// separator consumed, nothing to record
		default:
			return ctx.Fatalf("bad macro parameter")
		}
		expectComma = !expectComma
	}

	h.collectingName = nameTok.Text
	h.collecting = true
	h.macros[nameTok.Text] = &definition{params: params}
	return nil
}

// EndCollect closes the macro currently being defined.
func (h *Handler) EndCollect(ctx *asmctx.Context) error {
	if !h.collecting {
		return ctx.Fatalf("ENDM without matching MACRO")
	}
	h.collectingName = ""
	h.collecting = false
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// pop takes the last (next-to-process) token off the reverse-ordered
// slice, matching the expr/encoder packages' convention.
func pop(tokens *[]token.Token) token.Token {
	n := len(*tokens)
	t := (*tokens)[n-1]
	*tokens = (*tokens)[:n-1]
	return t
}
