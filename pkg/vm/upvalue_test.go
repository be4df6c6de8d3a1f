package vm

import (
	"testing"

	"github.com/Luminiscental/clearvm/internal/asmtest"
	"github.com/Luminiscental/clearvm/pkg/bytecode"
)

// Scenario 4: a function captures its argument in a closure, returns it,
// the outer frame is torn down (closing the upvalue), and calling the
// returned closure still observes the captured value.
func TestScenarioClosureCapturesLocalAcrossFrameTeardown(t *testing.T) {
	b := asmtest.New()
	five := b.ConstInt(5)

	// [A] arg for the outer call
	b.Emit(bytecode.PushConst, five)

	// [B] FUNCTION skip-over makeClosure's body; pushes makeClosure's ip
	makeClosureJump := b.EmitJump(bytecode.Function)

	// --- makeClosure(x): fp[0] = x ---
	innerJump := b.EmitJump(bytecode.Function)

	// --- inner closure body: fp[0] = the captured upvalue reference ---
	b.Emit(bytecode.PushLocal, 0)
	b.Emit(bytecode.Deref)
	b.Emit(bytecode.SetReturn)
	b.Emit(bytecode.Pop)
	b.Emit(bytecode.LoadFP)
	b.Emit(bytecode.LoadIP)
	// --- end inner closure body ---
	b.PatchJump(innerJump)

	b.Emit(bytecode.RefLocal, 0) // stack: x, innerIP, up
	b.Emit(bytecode.Struct, 2)   // fields = [up, innerIP]
	b.Emit(bytecode.SetReturn)
	b.Emit(bytecode.Pop) // pops x, closing 'up'
	b.Emit(bytecode.LoadFP)
	b.Emit(bytecode.LoadIP)
	// --- end makeClosure ---
	b.PatchJump(makeClosureJump)

	// [C] call makeClosure(5)
	b.Emit(bytecode.Call, 1)
	// [D] return lands here
	b.Emit(bytecode.PushReturn)

	// [E] unpack the returned closure struct and call it with its own
	// captured upvalue as the sole argument
	b.Emit(bytecode.Destruct, 0)
	b.Emit(bytecode.Call, 1)
	// [G] return lands here
	b.Emit(bytecode.PushReturn)

	machine := New()
	if err := machine.Load(b.Bytes()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := machine.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if machine.stack.sp != 1 {
		t.Fatalf("expected exactly one value on the stack, got sp=%d", machine.stack.sp)
	}
	got, _ := machine.stack.peek(0, 0)
	if got.AsInt() != 5 {
		t.Fatalf("expected captured value 5 after frame teardown, got %d", got.AsInt())
	}
}

func TestUpvalueDerefWhileOpenTracksLiveSlot(t *testing.T) {
	b := asmtest.New()
	one := b.ConstInt(1)
	two := b.ConstInt(2)

	b.Emit(bytecode.PushConst, one) // fp[0] = 1 (pretend top-level frame IS fp 0)
	b.Emit(bytecode.RefLocal, 0)    // push up, referencing slot 0
	b.Emit(bytecode.PushConst, two)
	b.Emit(bytecode.SetLocal, 0) // fp[0] = 2 (still same slot, refs preserved)
	b.Emit(bytecode.Deref)       // up should now read 2

	machine := New()
	_ = machine.Load(b.Bytes())
	if err := machine.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := machine.stack.peek(0, 0)
	if got.AsInt() != 2 {
		t.Fatalf("expected open upvalue to observe live slot update (2), got %d", got.AsInt())
	}
}

func TestPopClosesUpvalueForThatSlotOnly(t *testing.T) {
	b := asmtest.New()
	seven := b.ConstInt(7)

	b.Emit(bytecode.PushConst, seven)
	b.Emit(bytecode.RefLocal, 0)
	b.Emit(bytecode.Pop) // pops the pushed reference copy, not slot 0 itself

	machine := New()
	_ = machine.Load(b.Bytes())
	if err := machine.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(machine.stack.slots[0].Refs) != 1 {
		t.Fatalf("expected slot 0 to still carry its back-link, got %v", machine.stack.slots[0].Refs)
	}
	up := machine.stack.slots[0].Refs[0].(*Upvalue)
	if !up.open {
		t.Fatal("popping the reference copy must not close the upvalue; only popping slot 0 itself should")
	}

	closeOne(machine.stack.slots[0])
	if up.open {
		t.Fatal("closeOne on slot 0's value should have closed the upvalue still open on it")
	}
	if up.closed.AsInt() != 7 {
		t.Fatalf("expected closed value 7, got %d", up.closed.AsInt())
	}
}
