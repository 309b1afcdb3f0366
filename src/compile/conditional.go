package compile

import "zasm/asmctx"

// condState is one frame of the IF/ELSE/ENDIF nesting stack (§4.5),
// grounded on conditional_impl.rs's IfBlock enum.
type condState uint8

const (
	condIfTrue condState = iota
	condIfFalse
	condElseTrue
	condElseFalse
	condSkipEnd
)

// conditionalStack tracks nested IF/IFDEF/IFNDEF/ELSE/ENDIF blocks.
//
// The original's skip_translate decides, token by token, whether an
// IF-family directive even reaches process_if/process_else/
// process_endif while the assembler is inside a false/skipped branch —
// and that token-level gate only recognises one directive keyword at a
// time (ENDIF inside a SkipEnd frame, IF/ELSE/ENDIF inside an If(false)
// frame, IF/ENDIF inside an Else(false) frame). A second IF nested
// inside an already-SkipEnd frame is swallowed without ever pushing a
// frame for it, while its matching ENDIF still reaches process_endif
// and pops one — silently popping the wrong (outer) frame once nesting
// runs three levels deep. This divergence fixes that: every
// IF-family directive is always dispatched to push or pop exactly one
// frame, regardless of current skip state, so arbitrary nesting depth
// inside a skipped region stays balanced.
type conditionalStack struct {
	frames []condState
}

// skipping reports whether the current position should skip emitting
// code (any frame on the stack that isn't "true").
func (s *conditionalStack) skipping() bool {
	if len(s.frames) == 0 {
		return false
	}
	switch s.frames[len(s.frames)-1] {
	case condIfTrue, condElseTrue:
		return false
	default:
		return true
	}
}

// pushIf pushes a new frame for an IF/IFDEF/IFNDEF directive. When
// already skipping, the new frame is a condSkipEnd sentinel regardless
// of cond's own value — a nested conditional inside a skipped branch
// never itself un-skips, it just needs a frame so its ENDIF balances.
func (s *conditionalStack) pushIf(cond bool) {
	if s.skipping() {
		s.frames = append(s.frames, condSkipEnd)
		return
	}
	if cond {
		s.frames = append(s.frames, condIfTrue)
	} else {
		s.frames = append(s.frames, condIfFalse)
	}
}

// processElse flips the top If(true)/If(false) frame to its Else
// counterpart, grounded on Conditional::process_else. A condSkipEnd or
// already-Else top is left unchanged: the original's gating never lets
// a second ELSE reach this method for those states, but a prior pop-
// without-push bug there (losing the frame when the pattern match
// failed) is not ported — a no-op for states the table leaves unlisted
// is the correct, balanced behaviour for the nesting fix above.
func (s *conditionalStack) processElse(ctx *asmctx.Context) error {
	if len(s.frames) == 0 {
		return ctx.Fatalf("ELSE without matching IF")
	}
	top := len(s.frames) - 1
	switch s.frames[top] {
	case condIfTrue:
		s.frames[top] = condElseFalse
	case condIfFalse:
		s.frames[top] = condElseTrue
	}
	return nil
}

// processEndIf pops exactly one frame, grounded on
// Conditional::process_endif.
func (s *conditionalStack) processEndIf(ctx *asmctx.Context) error {
	if len(s.frames) == 0 {
		return ctx.Fatalf("ENDIF without matching IF")
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}
