package asmctx

import "zasm/compiler"

// Bank is the growing output buffer both passes share: pass 1 appends as it
// emits, pass 2 indexes back into already-emitted bytes to patch forward
// references. Grounded on bank_impl.rs.
type Bank struct {
	bytes       []byte
	maxCodeSize int
}

// NewBank returns an empty bank with the default 64K code-size ceiling.
func NewBank() *Bank {
	return &Bank{maxCodeSize: 65536}
}

// SetMaxCodeSize sets the ceiling Append enforces; a non-positive size
// resets it to the default 64K (mirrors AssemblerOptions::max_code_size's
// size>0 ? size : 65536 fallback).
func (b *Bank) SetMaxCodeSize(size int) {
	if size > 0 {
		b.maxCodeSize = size
	} else {
		b.maxCodeSize = 65536
	}
}

// Len returns the number of bytes emitted so far.
func (b *Bank) Len() int { return len(b.bytes) }

// Bytes returns the emitted bytes.
func (b *Bank) Bytes() []byte { return b.bytes }

// Push appends a single byte, erroring if doing so would exceed the
// code-size ceiling.
func (b *Bank) Push(value byte) error {
	if len(b.bytes)+1 > b.maxCodeSize {
		return compiler.NewDiagnostic("", "code size exceeds maximum", compiler.Location{}, compiler.PipelinePass1, compiler.SeverityError)
	}
	b.bytes = append(b.bytes, value)
	return nil
}

// Append appends a run of bytes, erroring if doing so would exceed the
// code-size ceiling.
func (b *Bank) Append(values ...byte) error {
	if len(b.bytes)+len(values) > b.maxCodeSize {
		return compiler.NewDiagnostic("", "code size exceeds maximum", compiler.Location{}, compiler.PipelinePass1, compiler.SeverityError)
	}
	b.bytes = append(b.bytes, values...)
	return nil
}

// PatchByte overwrites a single already-emitted byte, used by pass 2 to
// resolve a forward reference.
func (b *Bank) PatchByte(index int, value byte) {
	b.bytes[index] = value
}

// PatchWord overwrites two already-emitted bytes in little-endian order.
func (b *Bank) PatchWord(index int, value int) {
	b.bytes[index] = byte(value)
	b.bytes[index+1] = byte(value >> 8)
}

// EmitPrefix pushes the DD/FD index-register prefix byte a token requires,
// returning how many bytes it wrote (0 or 1), grounded on
// Bank::emit_prefix.
func (b *Bank) EmitPrefix(prefixByte byte, present bool) (int, error) {
	if !present {
		return 0, nil
	}
	if err := b.Push(prefixByte); err != nil {
		return 0, err
	}
	return 1, nil
}
