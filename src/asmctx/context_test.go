package asmctx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddLabelSetsLocalLabelScope(t *testing.T) {
	ctx := NewContext()
	ctx.Enter("test.asm", nil)
	ctx.SetPC(0x8000)

	assert.NoError(t, ctx.AddLabel("LOOP", false))
	assert.NoError(t, ctx.AddLabel(".again", false))

	addr, ok := ctx.GetLabel("LOOP")
	assert.True(t, ok)
	assert.Equal(t, 0x8000, addr)

	addr, ok = ctx.GetLabel(".again")
	assert.True(t, ok)
	assert.Equal(t, 0x8000, addr)

	_, ok = ctx.GetLabel("OTHER.again")
	assert.False(t, ok)
}

func TestAddLabelDuplicateIsError(t *testing.T) {
	ctx := NewContext()
	ctx.Enter("test.asm", nil)
	assert.NoError(t, ctx.AddLabel("START", false))
	assert.Error(t, ctx.AddLabel("START", false))
}

func TestAddConstantDuplicateIsError(t *testing.T) {
	ctx := NewContext()
	ctx.Enter("test.asm", nil)
	assert.NoError(t, ctx.AddConstant("WIDTH", 8))
	assert.Error(t, ctx.AddConstant("WIDTH", 16))
}

func TestGlobalLabelTrackedSeparately(t *testing.T) {
	ctx := NewContext()
	ctx.Enter("test.asm", nil)
	ctx.SetPC(0x100)
	assert.NoError(t, ctx.AddLabel("LOCALONLY", false))
	ctx.SetPC(0x200)
	assert.NoError(t, ctx.AddLabel("EXPORTED", true))

	var buf bytes.Buffer
	assert.NoError(t, ctx.ExportLabels(&buf))
	out := buf.String()
	assert.Contains(t, out, "EXPORTED")
	assert.NotContains(t, out, "LOCALONLY")
	assert.Contains(t, out, "0x200")
}

func TestForwardRefQueueIsLastInFirstOut(t *testing.T) {
	ctx := NewContext()
	ctx.AddForwardRef(ForwardReference{Label: "A"})
	ctx.AddForwardRef(ForwardReference{Label: "B"})

	assert.Equal(t, 2, ctx.ForwardRefCount())
	fw, ok := ctx.NextForwardRef()
	assert.True(t, ok)
	assert.Equal(t, "B", fw.Label)

	fw, ok = ctx.NextForwardRef()
	assert.True(t, ok)
	assert.Equal(t, "A", fw.Label)

	_, ok = ctx.NextForwardRef()
	assert.False(t, ok)
}

func TestLabelContextSnapshotAndRestore(t *testing.T) {
	ctx := NewContext()
	ctx.Enter("test.asm", nil)
	assert.NoError(t, ctx.AddLabel("OUTER", false))
	snap := ctx.LabelContext()
	assert.NoError(t, ctx.AddLabel("INNER", false))
	assert.Equal(t, "INNER", ctx.LabelContext())

	ctx.SetLabelContext(snap)
	assert.Equal(t, "OUTER", ctx.LabelContext())
}

func TestIncludeStackTracksNestedFiles(t *testing.T) {
	ctx := NewContext()
	ctx.Enter("main.asm", nil)
	ctx.NextLine()
	ctx.Enter("inc.asm", nil)
	assert.True(t, ctx.IsIncluded("main.asm"))
	assert.Equal(t, "inc.asm", ctx.CurrentFileName())
	ctx.Leave()
	assert.Equal(t, "main.asm", ctx.CurrentFileName())
	assert.Equal(t, 1, ctx.CurrentLineNumber())
}

func TestEnterBindsDefinesAsConstants(t *testing.T) {
	ctx := NewContext()
	ctx.Enter("test.asm", []string{"DEBUG=1", "LEVEL=3"})

	v, ok := ctx.GetConstant("DEBUG")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = ctx.GetConstant("LEVEL")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestStructMembersStayInDeclarationOrder(t *testing.T) {
	ctx := NewContext()
	assert.NoError(t, ctx.BeginStruct("Point"))
	ctx.AddStructMember("Point", "x", 0, 1)
	ctx.AddStructMember("Point", "y", 1, 1)
	ctx.AddStructMember("Point", "flags", 2, 2)
	ctx.AddSizeOfStruct("Point", 4)

	def, ok := ctx.StructDef("Point")
	assert.True(t, ok)
	assert.Equal(t, 4, def.Size)
	assert.Equal(t, []string{"x", "y", "flags"}, memberNames(def.Members))

	size, ok := ctx.GetSizeOf("Point")
	assert.True(t, ok)
	assert.Equal(t, 4, size)
}

func memberNames(members []StructMember) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

func TestBankAppendRejectsOverflowOfMaxCodeSize(t *testing.T) {
	b := NewBank()
	b.SetMaxCodeSize(2)
	assert.NoError(t, b.Append(1, 2))
	assert.Error(t, b.Append(3))
}

func TestBankPatchByteAndWord(t *testing.T) {
	b := NewBank()
	assert.NoError(t, b.Append(0, 0, 0))
	b.PatchByte(0, 0xAA)
	b.PatchWord(1, 0x1234)
	assert.Equal(t, []byte{0xAA, 0x34, 0x12}, b.Bytes())
}
