package compile

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestAssembleSimpleProgram(t *testing.T) {
	src := strings.NewReader(`
	ORG 0x8000
START:
	LD A, 5
	JR NOTYET
	NOP
NOTYET:
	RET
`)

	opts := DefaultOptions()
	opts.Origin = 0x8000
	result, err := Assemble("main.asm", src, nil, nil, opts)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []byte{0x3E, 0x05, 0x18, 0x01, 0x00, 0xC9}, result.Bytes)
}

func TestAssembleResolvesForwardLabelJump(t *testing.T) {
	src := strings.NewReader(`
	ORG 0
	JP THERE
	NOP
THERE:
	RET
`)
	result, err := Assemble("main.asm", src, nil, nil, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	// JP nn (0xC3) + little-endian target address (4: C3,nn,nn then NOP at 3, THERE at 4)
	assert.Equal(t, []byte{0xC3, 0x04, 0x00, 0x00, 0xC9}, result.Bytes)
}

func TestAssembleConstantDefineAndEqu(t *testing.T) {
	src := strings.NewReader(`
	ORG 0
WIDTH EQU 8
	LD A, WIDTH
`)
	result, err := Assemble("main.asm", src, nil, nil, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []byte{0x3E, 0x08}, result.Bytes)
}

func TestAssembleNestedConditionalSkipsArbitraryDepth(t *testing.T) {
	src := strings.NewReader(`
	ORG 0
#ifdef NOTDEFINED
	ifdef ALSONOT
		ifdef STILLNOT
			NOP
		endif
	endif
	RET
#else
	HALT
#endif
`)
	result, err := Assemble("main.asm", src, nil, nil, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []byte{0x76}, result.Bytes)
}

func TestAssembleStructInstanceEmitsMembersInOrder(t *testing.T) {
	src := strings.NewReader(`
	ORG 0
STRUCT Point
x.b
y.b
ENDS

mypoint: Point 1, 2
`)
	result, err := Assemble("main.asm", src, nil, nil, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []byte{1, 2}, result.Bytes)
}

func TestAssembleEnumAssignsSequentialConstants(t *testing.T) {
	src := strings.NewReader(`
	ORG 0
ENUM Colors
Red
Green
Blue
ENDE
	LD A, Colors.Green
`)
	result, err := Assemble("main.asm", src, nil, nil, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []byte{0x3E, 0x01}, result.Bytes)
}

func TestAssembleMacroExpansion(t *testing.T) {
	src := strings.NewReader(`
	ORG 0
MACRO ADD2 val
	ADD A, val
	ADD A, val
ENDM
	ADD2 7
`)
	result, err := Assemble("main.asm", src, nil, nil, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []byte{0xC6, 0x07, 0xC6, 0x07}, result.Bytes)
}

func TestAssembleIncludeDirective(t *testing.T) {
	fsys := fstest.MapFS{
		"inc.asm": &fstest.MapFile{Data: []byte("\tNOP\n")},
	}
	src := strings.NewReader(`
	ORG 0
	INCLUDE "inc.asm"
	RET
`)
	result, err := Assemble("main.asm", src, fsys, nil, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []byte{0x00, 0xC9}, result.Bytes)
}

func TestAssembleIncludeSearchesConfiguredDirectoriesInOrderBeforeDot(t *testing.T) {
	fsys := fstest.MapFS{
		"fromdir1/shared.asm": &fstest.MapFile{Data: []byte("\tNOP\n")},
		"shared.asm":          &fstest.MapFile{Data: []byte("\tHALT\n")},
	}
	opts := DefaultOptions()
	opts.IncludeDirs = []string{"fromdir1", "fromdir2"}
	src := strings.NewReader(`
	ORG 0
	INCLUDE "shared.asm"
`)
	result, err := Assemble("src/main.asm", src, fsys, nil, opts)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	// The main file's own directory (src) holds no shared.asm, so fromdir1
	// (first configured -I) must win over "." even though both resolve a
	// file named shared.asm.
	assert.Equal(t, []byte{0x00}, result.Bytes)
}

func TestAssembleUndefinedLabelProducesError(t *testing.T) {
	src := strings.NewReader(`
	ORG 0
	JP NOWHERE
`)
	result, err := Assemble("main.asm", src, nil, nil, DefaultOptions())
	assert.Error(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestAssembleWritesLabelExportWhenWriterGiven(t *testing.T) {
	src := strings.NewReader(`
	ORG 0x8000
	GLOBAL
START:
	RET
`)
	var out strings.Builder
	result, err := Assemble("main.asm", src, nil, &out, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, out.String(), "START")
	assert.Contains(t, out.String(), "0x8000")
}
