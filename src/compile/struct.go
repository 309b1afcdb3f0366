package compile

import (
	"strings"

	"zasm/asmctx"
	"zasm/compiler/token"
	"zasm/encoder"
)

// structCollector tracks an in-progress STRUCT ... ENDS block: the
// struct's name and its next member's byte offset. Grounded on
// struct_handler.rs's collect_struct field (the complete, authoritative
// struct handler — struct_handler_impl.rs is an earlier version missing
// both the size_of finalization below and emitStruct).
type structCollector struct {
	active bool
	name   string
	offset int
}

// beginProcessStruct starts collecting `STRUCT name`, grounded on
// StructHandler::begin_process_struct.
func beginProcessStruct(ctx *asmctx.Context, tokens *[]token.Token, sc *structCollector) error {
	name, ok := takeConstLabel(tokens)
	if !ok {
		return ctx.Fatalf("struct name expected")
	}
	if ctx.IsStruct(name) {
		return ctx.Fatalf("struct already exists: %s", name)
	}
	if err := ctx.BeginStruct(name); err != nil {
		return err
	}
	*sc = structCollector{active: true, name: name}
	return nil
}

// endProcessStruct closes the struct currently being collected,
// recording its total size for later SizeOf(name) lookups, grounded on
// StructHandler::end_process_struct (the call to add_size_of_struct
// lives only in struct_handler.rs, not struct_handler_impl.rs).
func endProcessStruct(ctx *asmctx.Context, tokens *[]token.Token, sc *structCollector) error {
	if !sc.active {
		return ctx.Fatalf("ENDS without matching STRUCT")
	}
	ctx.AddSizeOfStruct(sc.name, sc.offset)
	popOne(tokens)
	*sc = structCollector{}
	return nil
}

// processStruct handles one line while a STRUCT block is being
// collected: either the closing ENDS/END, or a member declaration
// (`MEMBER`, `MEMBER.b` or `MEMBER.w`, defaulting to a 1-byte "b"
// member), grounded on StructHandler::process_struct.
func processStruct(ctx *asmctx.Context, tokens *[]token.Token, sc *structCollector) error {
	if nextIsDirective(tokens, token.DirEndStruct) || nextIsDirective(tokens, token.DirEnd) {
		return endProcessStruct(ctx, tokens, sc)
	}
	member, ok := takeConstLabel(tokens)
	if !ok {
		return ctx.Fatalf("struct member name expected")
	}
	name, suffix := splitMember(member)
	size := 0
	switch suffix {
	case "b":
		size = 1
	case "w":
		size = 2
	default:
		return ctx.Fatalf("invalid struct member size suffix: %s", suffix)
	}
	if err := ctx.AddConstant(sc.name+"."+name, sc.offset); err != nil {
		return err
	}
	ctx.AddStructMember(sc.name, name, sc.offset, size)
	sc.offset += size
	return nil
}

func splitMember(member string) (name, suffix string) {
	parts := strings.SplitN(member, ".", 2)
	if len(parts) == 2 {
		return parts[0], strings.ToLower(parts[1])
	}
	return parts[0], "b"
}

// emitStruct emits one STRUCT-instance literal: `name member1, member2,
// ...`, one initializer expression per member in declaration order (the
// ordering fix asmctx.StructDef already applies over the original's
// unordered-map iteration, see asmctx/struct.go), binding a local
// `.member` label at each member's emitted offset. Grounded on
// StructHandler::emit_struct.
func emitStruct(e *encoder.Encoder, name string) error {
	def, ok := e.Ctx.StructDef(name)
	if !ok {
		return nil
	}
	for i, m := range def.Members {
		if err := e.Ctx.AddLabel("."+m.Name, false); err != nil {
			return err
		}
		var n int
		var err error
		switch m.Size {
		case 1:
			n, err = e.ExpectByte(0)
		case 2:
			n, err = e.ExpectWord(0)
		default:
			return e.Ctx.Fatalf("invalid struct member size")
		}
		if err != nil {
			return err
		}
		if m.Size == 1 {
			if err := e.EmitByte(byte(n)); err != nil {
				return err
			}
		} else {
			if err := e.EmitWord(n); err != nil {
				return err
			}
		}
		if i < len(def.Members)-1 {
			if err := e.ExpectToken(token.NewDelimiter()); err != nil {
				return err
			}
		}
	}
	return nil
}
