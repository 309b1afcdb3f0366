package asmctx

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"zasm/compiler"
)

// Context is the symbol table and position state shared by both passes
// (§2-C4, §3), grounded on AssemblerContext/AssemblerContext's inherent
// methods in assembler_context_impl.rs.
type Context struct {
	labels          map[string]int
	globalLabels    []string
	constants       map[string]int
	sizeOf          map[string]int
	structDefs      map[string]*StructDef
	forwardRefs     []ForwardReference
	lineNumber      []int
	fileName        []string
	currentPC       int
	labelContext    string
	asmPC           int
	diags           *compiler.Diagnostics
}

// NewContext returns an empty context with PC at zero.
func NewContext() *Context {
	return &Context{
		labels:     map[string]int{},
		constants:  map[string]int{},
		sizeOf:     map[string]int{},
		structDefs: map[string]*StructDef{},
		diags:      compiler.NewDiagnostics(),
	}
}

// Diagnostics returns the context's shared diagnostics collector — the
// same instance Fatalf registers every fatal error into, so callers
// (compile.Assembler among them) see every error reported through
// ctx.Fatalf without needing a second collector of their own.
func (c *Context) Diagnostics() *compiler.Diagnostics {
	return c.diags
}

// CurrentLineNumber returns the line number within the innermost active
// (possibly included) file, or 0 outside any file.
func (c *Context) CurrentLineNumber() int {
	if len(c.lineNumber) == 0 {
		return 0
	}
	return c.lineNumber[len(c.lineNumber)-1]
}

// CurrentFileName returns the innermost active file name, or "<none>".
func (c *Context) CurrentFileName() string {
	if len(c.fileName) == 0 {
		return "<none>"
	}
	return c.fileName[len(c.fileName)-1]
}

// IsIncluded reports whether name is already on the include stack, used to
// reject circular INCLUDEs.
func (c *Context) IsIncluded(name string) bool {
	for _, f := range c.fileName {
		if f == name {
			return true
		}
	}
	return false
}

// OffsetPC returns the address offset bytes ahead of the current PC,
// without moving it (used when computing a forward reference's patch
// address from an operand's byte offset within the instruction).
func (c *Context) OffsetPC(offset int) int { return c.currentPC + offset }

// PC returns the current program counter.
func (c *Context) PC() int { return c.currentPC }

// SetPC sets the program counter, e.g. from an ORG directive.
func (c *Context) SetPC(value int) { c.currentPC = value }

// AddPC advances the program counter by value, e.g. after emitting an
// instruction.
func (c *Context) AddPC(value int) { c.currentPC += value }

// AsmPC returns the PC value latched at the start of the current
// statement, the value `$`/ASMPC resolves to (§4.4).
func (c *Context) AsmPC() int { return c.asmPC }

// InitAsmPC latches the current PC as the statement's ASMPC value; called
// once per statement before its operands are parsed.
func (c *Context) InitAsmPC() { c.asmPC = c.currentPC }

// Enter pushes a new file frame, e.g. entering an INCLUDE, binding each
// "name=expr" define onto the constant table first (grounded on
// AssemblerContext::enter; the define values here are plain integers,
// since the expression engine isn't available before any file is entered).
func (c *Context) Enter(name string, defines []string) {
	for _, d := range defines {
		parts := strings.SplitN(d, "=", 2)
		if len(parts) != 2 {
			continue
		}
		var value int
		fmt.Sscanf(strings.TrimSpace(parts[1]), "%d", &value)
		c.constants[strings.TrimSpace(parts[0])] = value
	}
	c.fileName = append(c.fileName, name)
	c.lineNumber = append(c.lineNumber, 0)
}

// Leave pops the current file frame, e.g. returning from an INCLUDE.
func (c *Context) Leave() {
	c.fileName = c.fileName[:len(c.fileName)-1]
	c.lineNumber = c.lineNumber[:len(c.lineNumber)-1]
}

// NextLine advances the innermost file's line counter.
func (c *Context) NextLine() {
	c.lineNumber[len(c.lineNumber)-1]++
}

// LabelContext returns the current local-label scope (the most recently
// defined non-dot-prefixed label), used to snapshot/restore scope around
// a deferred forward-reference expression's eventual pass-2 evaluation.
func (c *Context) LabelContext() string { return c.labelContext }

// SetLabelContext restores a previously snapshotted local-label scope,
// e.g. before evaluating a forward reference captured under a different
// scope than whatever pass 2 happens to be in when it's drained.
func (c *Context) SetLabelContext(s string) { c.labelContext = s }

// resolveLocal expands a dot-prefixed local label into its mangled global
// form relative to the last non-local label (§4.1/§4.4 scoping rule).
func (c *Context) resolveLocal(name string) string {
	if strings.HasPrefix(name, ".") {
		return c.labelContext + name
	}
	return name
}

// IsLabelDefined reports whether name (resolved through local-label
// scoping) already has a value.
func (c *Context) IsLabelDefined(name string) bool {
	_, ok := c.labels[c.resolveLocal(name)]
	return ok
}

// IsConstantDefined reports whether name is a defined constant.
func (c *Context) IsConstantDefined(name string) bool {
	_, ok := c.constants[name]
	return ok
}

// GetLabel returns a label's address, resolving local-label scoping.
func (c *Context) GetLabel(name string) (int, bool) {
	v, ok := c.labels[c.resolveLocal(name)]
	return v, ok
}

// GetConstant returns a constant's value.
func (c *Context) GetConstant(name string) (int, bool) {
	v, ok := c.constants[name]
	return v, ok
}

// GetLabelOrConstant resolves name against labels first, then constants.
func (c *Context) GetLabelOrConstant(name string) (int, error) {
	if v, ok := c.GetLabel(name); ok {
		return v, nil
	}
	if v, ok := c.GetConstant(name); ok {
		return v, nil
	}
	return 0, c.Fatalf("label or constant not found: %s", name)
}

// AddLabel records name at the current PC. A non-dot name becomes the new
// local-label scope (label_context); a dot-prefixed name is mangled
// relative to the current scope instead of becoming one itself.
func (c *Context) AddLabel(name string, global bool) error {
	labelName := strings.TrimSuffix(name, ":")
	if !strings.HasPrefix(labelName, ".") {
		c.labelContext = labelName
	} else {
		labelName = c.labelContext + labelName
	}

	if c.IsLabelDefined(labelName) {
		return c.Fatalf("label or constant already exists: %s", labelName)
	}
	c.labels[labelName] = c.currentPC
	if global {
		c.globalLabels = append(c.globalLabels, labelName)
	}
	return nil
}

// AddConstant records a named constant, rejecting redefinition.
func (c *Context) AddConstant(name string, value int) error {
	if c.IsConstantDefined(name) {
		return c.Fatalf("label or constant already exists: %s", name)
	}
	c.constants[name] = value
	return nil
}

// AddForwardRef appends fw to the pending backlog pass 2 will drain.
func (c *Context) AddForwardRef(fw ForwardReference) {
	c.forwardRefs = append(c.forwardRefs, fw)
}

// NextForwardRef pops the most recently added forward reference, or
// reports false once the backlog is empty.
func (c *Context) NextForwardRef() (ForwardReference, bool) {
	if len(c.forwardRefs) == 0 {
		return ForwardReference{}, false
	}
	n := len(c.forwardRefs) - 1
	fw := c.forwardRefs[n]
	c.forwardRefs = c.forwardRefs[:n]
	return fw, true
}

// ForwardRefCount reports how many forward references remain pending
// (used at end-of-assembly to detect unresolved symbols).
func (c *Context) ForwardRefCount() int { return len(c.forwardRefs) }

// GetSizeOf returns the recorded size of a struct or labeled block.
func (c *Context) GetSizeOf(name string) (int, bool) {
	v, ok := c.sizeOf[name]
	return v, ok
}

// AddSizeOfStruct records a STRUCT's total size under its own name.
func (c *Context) AddSizeOfStruct(name string, size int) { c.sizeOf[name] = size }

// AddSizeOf records size under the current label scope, but only when the
// label still marks the current PC (i.e. nothing has been emitted between
// the label and the SIZEOF-triggering directive) — mirrors
// AssemblerContext::add_size_of's guard.
func (c *Context) AddSizeOf(size int) {
	if pc, ok := c.GetLabel(c.labelContext); ok && c.currentPC == pc {
		c.sizeOf[c.labelContext] = size
	}
}

// BeginStruct registers a new, empty struct definition.
func (c *Context) BeginStruct(name string) error {
	if _, exists := c.structDefs[name]; exists {
		return c.Fatalf("struct already exists: %s", name)
	}
	c.structDefs[name] = &StructDef{}
	return nil
}

// IsStruct reports whether name names a declared STRUCT.
func (c *Context) IsStruct(name string) bool {
	_, ok := c.structDefs[name]
	return ok
}

// StructDef returns the named struct's definition.
func (c *Context) StructDef(name string) (*StructDef, bool) {
	s, ok := c.structDefs[name]
	return s, ok
}

// AddStructMember appends member to name's struct in declaration order
// (the ordering fix over the original's unordered map, see struct.go).
func (c *Context) AddStructMember(name, member string, offset, size int) {
	if s, ok := c.structDefs[name]; ok {
		s.Members = append(s.Members, StructMember{Name: member, Offset: offset, Size: size})
		s.Size = offset + size
	}
}

// ExportLabels writes every global label as "name = 0xHEX" to w, padded to
// a common column width (grounded on AssemblerContext::export_labels,
// adapted to Go's io.Writer discipline instead of opening the file
// itself).
func (c *Context) ExportLabels(w io.Writer) error {
	width := 0
	for _, name := range c.globalLabels {
		if len(name)+1 > width {
			width = len(name) + 1
		}
	}
	sorted := append([]string{}, c.globalLabels...)
	sort.Strings(sorted)
	for _, name := range sorted {
		addr, _ := c.GetLabel(name)
		line := fmt.Sprintf("%-*s = 0x%x\n", width, name, addr)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Fatalf builds a fatal Diagnostic stamped with the context's current
// location and registers it with the context's Diagnostics collector,
// mirroring AssemblerContext::error/error_text.
func (c *Context) Fatalf(format string, args ...any) *compiler.Diagnostic {
	return c.diags.Fatal(
		c.CurrentFileName(),
		fmt.Sprintf(format, args...),
		compiler.Location{Line: c.CurrentLineNumber()},
		compiler.PipelinePass1,
	)
}
