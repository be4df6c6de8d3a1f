package vm

import "github.com/Luminiscental/clearvm/pkg/value"

// StackMax is the hard bound on value-stack depth (spec §5).
const StackMax = 512

// stack is the VM's single contiguous value stack, shared by arguments,
// locals, and temporaries, with sp tracking one-past-the-top the way the
// spec's invariant `stack ≤ fp ≤ sp ≤ stack+STACK_MAX` is phrased.
type stack struct {
	slots [StackMax]value.Value
	sp    int
}

// push introduces a brand new slot at the top of the stack. It never
// carries over v's back-link list even if v was just read from a slot
// that has one (PUSH_LOCAL duplicating a captured local, for instance):
// a freshly pushed slot is not yet the target of any upvalue (invariant
// 5, spec §3), so an ordinary POP of this new temporary must not closed
// an upvalue that still legitimately tracks the original slot.
func (s *stack) push(v value.Value, offset int) *VMError {
	if s.sp >= StackMax {
		return newError(KindOverflow, offset, "stack overflow pushing at depth %d", s.sp)
	}
	v.Refs = nil
	s.slots[s.sp] = v
	s.sp++
	return nil
}

func (s *stack) pop(offset int) (value.Value, *VMError) {
	if s.sp <= 0 {
		return value.Value{}, newError(KindUnderflow, offset, "pop on empty stack")
	}
	s.sp--
	v := s.slots[s.sp]
	s.slots[s.sp] = value.Value{}
	return v, nil
}

// peek returns the value `back` slots below the top (0 = top) without
// removing it.
func (s *stack) peek(back, offset int) (value.Value, *VMError) {
	idx := s.sp - 1 - back
	if idx < 0 {
		return value.Value{}, newError(KindUnderflow, offset, "peek(%d) below stack bottom", back)
	}
	return s.slots[idx], nil
}

// at returns the value at absolute index idx (used for fp-relative local
// access), erroring with KindRange since an out-of-range local index is a
// bytecode defect, not a stack-discipline violation.
func (s *stack) at(idx, offset int) (value.Value, *VMError) {
	if idx < 0 || idx >= s.sp {
		return value.Value{}, newError(KindRange, offset, "local index %d out of range (sp=%d)", idx, s.sp)
	}
	return s.slots[idx], nil
}

// set overwrites the slot at absolute index idx, preserving its existing
// back-link list by default — this is SET_LOCAL's documented behavior
// (spec §4.4, §9 open question 2), and SET_REF reuses it for the same
// reason (SPEC_FULL.md §5).
func (s *stack) set(idx int, v value.Value, offset int) *VMError {
	if idx < 0 || idx >= s.sp {
		return newError(KindRange, offset, "local index %d out of range (sp=%d)", idx, s.sp)
	}
	s.slots[idx] = v.WithRefs(s.slots[idx].Refs)
	return nil
}

// overwriteTop replaces the current top-of-stack value outright, with no
// back-link preservation and no closing of whatever refs the old top
// carried — this is SQUASH's documented "no close semantics" (spec
// §4.4), distinct from set's SET_LOCAL-style preserve-and-keep-open
// behavior.
func (s *stack) overwriteTop(v value.Value, offset int) *VMError {
	if s.sp <= 0 {
		return newError(KindUnderflow, offset, "overwrite on empty stack")
	}
	s.slots[s.sp-1] = v
	return nil
}
