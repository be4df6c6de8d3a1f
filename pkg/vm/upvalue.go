package vm

import "github.com/Luminiscental/clearvm/pkg/value"

// Upvalue implements value.Closer. While open it points at a live stack
// slot by absolute index; REF_LOCAL registers it in that slot's back-link
// list so a later POP can close it. Once closed, it holds its own value
// cell and the slot index is no longer consulted — mirroring the source's
// ObjUpvalue{Value *value, Value closedValue} duality by swapping which
// field is authoritative rather than keeping a live pointer into freed
// memory.
type Upvalue struct {
	vm     *VM
	slot   int
	open   bool
	closed value.Value
}

func (vm *VM) newUpvalue(slot int) *Upvalue {
	return &Upvalue{vm: vm, slot: slot, open: true}
}

// Kind and String satisfy value.Object so an upvalue reference can be
// pushed and carried around like any other heap value.
func (u *Upvalue) Kind() value.ObjKind { return value.KindUpvalue }
func (u *Upvalue) String() string      { return "<upvalue>" }

// Close implements value.Closer: it is invoked once per upvalue in a
// slot's back-link list at POP time (spec §4.5), with current being the
// value the slot held just before it disappears.
func (u *Upvalue) Close(current value.Value) {
	if !u.open {
		return
	}
	u.closed = current
	u.open = false
}

// Deref returns the value the upvalue currently points at: the live slot
// if still open, or the closed cell otherwise.
func (u *Upvalue) Deref() value.Value {
	if u.open {
		return u.vm.stack.slots[u.slot]
	}
	return u.closed
}

// SetThrough writes v through the upvalue, to the live slot (preserving
// that slot's own back-link list, the same rule SET_LOCAL follows) if
// still open, or into the closed cell otherwise.
func (u *Upvalue) SetThrough(v value.Value, offset int) *VMError {
	if u.open {
		return u.vm.stack.set(u.slot, v, offset)
	}
	u.closed = v.WithRefs(u.closed.Refs)
	return nil
}

// closeOne closes the back-link list attached to the single value v,
// used by POP which removes exactly one slot. A function return discards
// its locals via a sequence of individual POPs composed by the (external)
// compiler, so this is the only closing primitive the dispatch loop ever
// needs — there is no bulk-discard opcode in spec §4.4 for a batched
// equivalent to call.
func closeOne(v value.Value) {
	for _, ref := range v.Refs {
		ref.Close(v)
	}
}
