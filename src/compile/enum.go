package compile

import (
	"zasm/asmctx"
	"zasm/compiler/token"
)

// enumCollector tracks an in-progress ENUM ... ENDE block: the enum's
// name, its next member's value and the step each member advances it
// by. Grounded on enum_handler_impl.rs's collect_enum field.
type enumCollector struct {
	active bool
	name   string
	value  int
	step   int
}

// beginProcessEnum starts collecting `ENUM name [start[, step]]`,
// grounded on EnumHandler::begin_process_enum.
func beginProcessEnum(ctx *asmctx.Context, tokens *[]token.Token, ec *enumCollector) error {
	name, ok := takeConstLabel(tokens)
	if !ok {
		return ctx.Fatalf("enum name expected")
	}
	start, _ := optionalNumber(tokens, nil)
	step, hasStep := optionalNumber(tokens, commaDelim())
	if !hasStep {
		step = 1
	}
	if step == 0 {
		return ctx.Fatalf("enum step cannot be zero")
	}
	*ec = enumCollector{active: true, name: name, value: start, step: step}
	return nil
}

// endProcessEnum closes the enum currently being collected, grounded on
// EnumHandler::end_process_enum.
func endProcessEnum(ctx *asmctx.Context, tokens *[]token.Token, ec *enumCollector) error {
	if !ec.active {
		return ctx.Fatalf("ENDE without matching ENUM")
	}
	popOne(tokens)
	*ec = enumCollector{}
	return nil
}

// processEnum handles one line while an ENUM block is being collected:
// either the closing ENDE/END, or a `MEMBER [= value]` binding,
// grounded on EnumHandler::process_enum.
func processEnum(ctx *asmctx.Context, tokens *[]token.Token, ec *enumCollector) error {
	if nextIsDirective(tokens, token.DirEndEnum) || nextIsDirective(tokens, token.DirEnd) {
		return endProcessEnum(ctx, tokens, ec)
	}
	name, ok := takeConstLabel(tokens)
	if !ok {
		return ctx.Fatalf("enum member name expected")
	}
	value, hasValue := optionalNumber(tokens, equalsOp())
	if hasValue {
		ec.value = value
	}
	if err := ctx.AddConstant(ec.name+"."+name, ec.value); err != nil {
		return err
	}
	ec.value += ec.step
	return nil
}

// optionalNumber mirrors Collector::optional_parameter: if preceded
// is non-nil, it must match the next token (peeked, not consumed
// otherwise) before a Number is read; a type mismatch or empty
// remainder is reported as "not present", never as an error (the
// original's collector.rs non-erroring variant, not the
// collector_impl.rs one that propagates take_token's error — the
// erroring version would fault on e.g. `ENUM name` with no count to
// read, which is valid syntax).
func optionalNumber(tokens *[]token.Token, preceded *token.Token) (int, bool) {
	if preceded != nil {
		if len(*tokens) == 0 || !peek(*tokens).Equal(*preceded) {
			return 0, false
		}
		popOne(tokens)
	}
	if len(*tokens) == 0 {
		return 0, false
	}
	t := peek(*tokens)
	if t.Kind != token.KindNumber {
		return 0, false
	}
	popOne(tokens)
	return int(t.Number), true
}

func commaDelim() *token.Token {
	t := token.NewDelimiter()
	return &t
}

func equalsOp() *token.Token {
	t := token.NewOperator(token.OpEquals)
	return &t
}
