// Package compile implements the two-pass assembly driver (§2-C6, C9,
// C11, C12): directive processing, conditional/enum/struct collection,
// the first-pass line-by-line translation loop, the second-pass
// forward-reference patcher, and label export. Grounded on
// assembler.rs's Assembler (assemble/first_pass/second_pass/translate/
// handle_label), directive/directives.rs's process_directive dispatch,
// conditional_impl.rs (fixed for arbitrary nesting, see conditional.go),
// enum_handler_impl.rs and struct_handler.rs.
package compile

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"

	"zasm/asmctx"
	"zasm/compiler"
	"zasm/compiler/lexer"
	"zasm/compiler/token"
	"zasm/encoder"
	"zasm/expr"
	"zasm/macro"
)

// Assembler holds every piece of state one assembly run threads through
// both passes, mirroring the fields assembler.rs's Assembler struct
// groups together.
type Assembler struct {
	Ctx     *asmctx.Context
	Bank    *asmctx.Bank
	Expr    *expr.Parser
	Enc     *encoder.Encoder
	Macros  *macro.Handler
	Diags   *compiler.Diagnostics
	Options *Options

	// FS resolves INCLUDE/INCBIN file names (§1: the core never opens
	// files by path itself outside this one carve-out). Defaults to
	// os.DirFS(".") when New is given a nil fs.FS.
	FS fs.FS

	Cond        conditionalStack
	enumState   enumCollector
	structState structCollector

	tok             *lexer.LineTokenizer
	tokens          []token.Token
	nextLabelGlobal bool
	expandingMacro  bool

	TotalLines int
	Messages   []string
}

// New returns an Assembler configured from opts, sharing one context,
// bank and encoder across every file a run touches. fsys resolves
// INCLUDE/INCBIN file names; a nil fsys defaults to os.DirFS(".").
func New(opts *Options, fsys fs.FS) *Assembler {
	ctx := asmctx.NewContext()
	bank := asmctx.NewBank()
	bank.SetMaxCodeSize(opts.MaxCodeSize)
	diags := ctx.Diagnostics()
	if fsys == nil {
		fsys = os.DirFS(".")
	}
	enc := encoder.New(ctx, bank, diags)
	enc.Z80NEnabled = opts.Z80N
	enc.CSpectEnabled = opts.CSpect
	return &Assembler{
		Ctx:     ctx,
		Bank:    bank,
		Expr:    enc.Expr,
		Enc:     enc,
		Macros:  macro.New(),
		Diags:   diags,
		Options: opts,
		FS:      fsys,
		tok:     lexer.NewLineTokenizer(),
	}
}

// Bytes returns the assembled output image accumulated so far.
func (a *Assembler) Bytes() []byte {
	return a.Bank.Bytes()
}

// WriteTo writes the assembled output image to w, implementing
// io.WriterTo so the core hands its result to a caller-supplied sink
// (a file, a network connection, a buffer) without ever opening one
// itself.
func (a *Assembler) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.Bank.Bytes())
	return int64(n), err
}

// ExportLabels writes every globally-exported label's name and address
// to w, grounded on §4.3's export_labels contract. The caller owns w —
// opening a file, a buffer, anything implementing io.Writer.
func (a *Assembler) ExportLabels(w io.Writer) error {
	return a.Ctx.ExportLabels(w)
}

func (a *Assembler) warnf(format string, args ...any) {
	a.Diags.Warn(a.Ctx.CurrentFileName(), fmt.Sprintf(format, args...), compiler.Location{Line: a.Ctx.CurrentLineNumber()}, compiler.PipelinePass1)
}

// Translate runs one physical line's tokens (in forward reading order)
// through the statement dispatch loop, grounded on Assembler::translate.
// A line can hold more than one top-level statement (e.g. a label
// immediately followed by an instruction), so the loop keeps dispatching
// until the line's tokens are exhausted.
func (a *Assembler) Translate(lineTokens []token.Token) error {
	if !a.expandingMacro {
		a.Ctx.NextLine()
	}
	a.tokens = reverseTokens(lineTokens)
	a.tokens = a.Macros.ExpandDefines(a.tokens)

	if nextIsDirective(&a.tokens, token.DirGlobal) {
		a.nextLabelGlobal = true
	}

	for len(a.tokens) > 0 {
		a.Ctx.InitAsmPC()

		if a.enumState.active {
			if err := processEnum(a.Ctx, &a.tokens, &a.enumState); err != nil {
				return err
			}
			continue
		}
		if a.structState.active {
			if err := processStruct(a.Ctx, &a.tokens, &a.structState); err != nil {
				return err
			}
			continue
		}
		skip, err := a.skipTranslate()
		if err != nil {
			return err
		}
		if skip {
			continue
		}

		t := popOne(&a.tokens)
		switch t.Kind {
		case token.KindDirective:
			if err := a.processDirective(t.Directive); err != nil {
				return err
			}
		case token.KindOpCode:
			a.Enc.Tokens = a.tokens
			encErr := a.Enc.Encode(t.OpCode)
			a.tokens = a.Enc.Tokens
			if encErr != nil {
				return encErr
			}
		case token.KindConstLabel:
			if err := a.processLabel(t.Text); err != nil {
				return err
			}
		case token.KindInvalid:
			return a.Ctx.Fatalf("invalid label")
		default:
			return a.Ctx.Fatalf("syntax error")
		}
	}
	return nil
}

// skipTranslate decides whether the next token should be silently
// discarded because the assembler is inside a false IF/ELSE branch,
// grounded on Assembler::skip_translate — but always dispatching every
// IF-family directive (see conditional.go's divergence note) rather
// than the original's token-by-token allow-list, which is what loses
// track of nesting depth beyond a couple of levels.
func (a *Assembler) skipTranslate() (bool, error) {
	if !a.Cond.skipping() {
		return false, nil
	}
	t := peek(a.tokens)
	if t.Kind == token.KindDirective {
		switch t.Directive {
		case token.DirIf, token.DirIfDef, token.DirIfNotDef, token.DirElse, token.DirEndIf:
			return false, nil
		}
	}
	popOne(&a.tokens)
	return true, nil
}

// processLabel handles a leading ConstLabel token: a STRUCT-instance
// literal, a macro invocation, or a plain label/EQU binding. Grounded
// on Assembler::process_label.
func (a *Assembler) processLabel(name string) error {
	switch {
	case a.Ctx.IsStruct(name):
		a.Enc.Tokens = a.tokens
		err := emitStruct(a.Enc, name)
		a.tokens = a.Enc.Tokens
		return err
	case a.Macros.IsMacro(name):
		if err := a.Macros.ParseMacro(a.Ctx, name, &a.tokens); err != nil {
			return err
		}
		a.expandingMacro = true
		defer func() { a.expandingMacro = false }()
		for {
			line, ok := a.Macros.Expand()
			if !ok {
				break
			}
			if err := a.Translate(reverseTokens(line)); err != nil {
				return err
			}
		}
		return nil
	default:
		return a.handleLabel(name, a.nextLabelGlobal)
	}
}

// handleLabel binds name either as an EQU constant (if followed by `=`)
// or as a plain label at the current PC, grounded on
// Assembler::handle_label.
func (a *Assembler) handleLabel(name string, global bool) error {
	a.nextLabelGlobal = false
	if a.Enc.NextTokenIs(token.NewOperator(token.OpEquals)) {
		popOne(&a.tokens)
		n, deferred, err := a.Expr.Parse(a.Ctx, &a.tokens, 0, -1, false)
		if err != nil {
			return err
		}
		if deferred {
			return a.Ctx.Fatalf("EQU value cannot be a forward reference")
		}
		if err := a.Ctx.AddConstant(name, n); err != nil {
			return err
		}
		if len(a.tokens) > 0 {
			a.tokens = nil
			a.warnf("extra characters at end of line")
		}
		return nil
	}
	return a.Ctx.AddLabel(name, global)
}

// FirstPass tokenizes src line by line (src's content logically named
// fileName, for diagnostics and relative INCLUDE resolution) and
// translates each one, routing lines to the macro collector while a
// MACRO body is being gathered (everything up to its closing END/ENDM).
// Grounded on Assembler::first_pass, generalized from the original's
// direct path-based file open to an injected io.Reader per §1/§5's
// I/O-at-the-boundary contract.
func (a *Assembler) FirstPass(fileName string, src io.Reader) error {
	a.Ctx.Enter(fileName, a.Options.Defines)
	defer a.Ctx.Leave()

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		a.TotalLines++
		lineTokens, terr := a.tok.Tokenize(scanner.Text())
		if terr != nil {
			return terr
		}
		a.tok.Reset()

		if a.Macros.Collecting() && !(len(lineTokens) > 0 && lineTokens[0].Kind == token.KindDirective && lineTokens[0].Directive == token.DirEnd) {
			rev := reverseTokens(lineTokens)
			if err := a.Macros.Collect(a.Ctx, &rev); err != nil {
				return err
			}
			continue
		}
		if err := a.Translate(lineTokens); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", fileName, err)
	}
	return nil
}

// SecondPass drains the forward-reference backlog, evaluating each
// deferred expression (or resolving a plain label) against the now-
// complete symbol table and patching the already-emitted bytes at its
// recorded PC, including the Z80N PUSH nn big-endian-immediate special
// case. Grounded on Assembler::second_pass.
func (a *Assembler) SecondPass() error {
	origin := int(a.Options.Origin)
	for {
		fw, ok := a.Ctx.NextForwardRef()
		if !ok {
			break
		}

		var data int
		if fw.IsExpression {
			a.Ctx.SetLabelContext(fw.Label)
			n, err := a.Expr.Evaluate(a.Ctx, fw.Expression)
			if err != nil {
				return a.Diags.Fatal(fw.FileName, err.Error(), compiler.Location{Line: fw.LineNo}, compiler.PipelinePass2)
			}
			data = n
		} else {
			n, err := a.Ctx.GetLabelOrConstant(fw.Label)
			if err != nil {
				return a.Diags.Fatal(fw.FileName, err.Error(), compiler.Location{Line: fw.LineNo}, compiler.PipelinePass2)
			}
			data = n
		}

		index := fw.Pc - origin
		if fw.IsRelative {
			offset := data - (fw.Pc + 1)
			a.Bank.PatchByte(index, byte(offset))
			continue
		}

		for d := 0; d < fw.ByteCount; d++ {
			a.Bank.PatchByte(index+d, byte(data))
			data >>= 8
		}
		if a.Enc.Z80NEnabled && fw.ByteCount == 2 && index > 1 {
			bytes := a.Bank.Bytes()
			if bytes[index-2] == 0xED && bytes[index-1] == 0x8A {
				a.Bank.PatchWord(index, int(bytes[index])<<8|int(bytes[index+1]))
			}
		}
	}
	return nil
}

// Result is the outcome of one Assemble run: the final byte image, the
// accumulated diagnostics and !MESSAGE text, and whether both passes
// completed without a fatal error.
type Result struct {
	Bytes    []byte
	Warnings []*compiler.Diagnostic
	Errors   []*compiler.Diagnostic
	Messages []string
	Success  bool
}

// Assemble runs the complete pipeline over src (logically named
// sourceName, for diagnostics and relative INCLUDE resolution): pass 1,
// pass 2, then (if labelOut is non-nil) label export, mirroring
// Assembler::assemble's staged structure with the teacher's
// verbose-stage-logging idiom. fsys resolves INCLUDE/INCBIN file names;
// a nil fsys defaults to os.DirFS("."). Per §1/§5, Assemble never opens
// a file by path itself — the source, the include root, and the label
// sink are all supplied by the caller.
func Assemble(sourceName string, src io.Reader, fsys fs.FS, labelOut io.Writer, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	a := New(opts, fsys)
	result := &Result{}

	if opts.Verbose {
		fmt.Println("==> Stage 1: First pass")
	}
	if err := a.FirstPass(sourceName, src); err != nil {
		result.Errors = a.Diags.Errors()
		result.Warnings = a.Diags.Warnings()
		return result, err
	}

	if opts.Verbose {
		fmt.Println("==> Stage 2: Second pass")
	}
	if err := a.SecondPass(); err != nil {
		result.Errors = a.Diags.Errors()
		result.Warnings = a.Diags.Warnings()
		return result, err
	}

	if labelOut != nil {
		if opts.Verbose {
			fmt.Println("==> Stage 3: Export labels")
		}
		if err := a.ExportLabels(labelOut); err != nil {
			result.Errors = a.Diags.Errors()
			result.Warnings = a.Diags.Warnings()
			return result, err
		}
	}

	result.Bytes = a.Bytes()
	result.Warnings = a.Diags.Warnings()
	result.Errors = a.Diags.Errors()
	result.Messages = a.Messages
	result.Success = !a.Diags.HasErrors()
	return result, nil
}
