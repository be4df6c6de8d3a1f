package vm

import (
	"testing"

	"github.com/Luminiscental/clearvm/internal/asmtest"
	"github.com/Luminiscental/clearvm/pkg/bytecode"
)

func TestUnknownOpcodeIsDecodeError(t *testing.T) {
	machine := New()
	if err := machine.Load([]byte{0, 0xFE}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	err := machine.Run()
	vmErr, ok := err.(*VMError)
	if !ok || vmErr.Kind != KindDecode {
		t.Fatalf("expected KindDecode for unknown opcode, got %v", err)
	}
}

func TestTruncatedImmediateIsDecodeError(t *testing.T) {
	machine := New()
	if err := machine.Load([]byte{0, byte(bytecode.PushConst)}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	err := machine.Run()
	vmErr, ok := err.(*VMError)
	if !ok || vmErr.Kind != KindDecode {
		t.Fatalf("expected KindDecode for truncated immediate, got %v", err)
	}
}

func TestLoadPropagatesLoaderDecodeError(t *testing.T) {
	machine := New()
	err := machine.Load([]byte{1, 0xFF}) // unknown constant tag
	vmErr, ok := err.(*VMError)
	if !ok || vmErr.Kind != KindDecode {
		t.Fatalf("expected KindDecode from a bad constant pool, got %v", err)
	}
	if machine.State() != HaltedErr {
		t.Fatalf("expected HALTED_ERR, got %s", machine.State())
	}
}

func TestOffsetPointsAtFailingOpcode(t *testing.T) {
	b := asmtest.New()
	b.Emit(bytecode.PushNil)
	b.Emit(bytecode.Pop)
	failOffset := b.Here()
	b.Emit(bytecode.Pop) // underflow here

	machine := New()
	_ = machine.Load(b.Bytes())
	err := machine.Run()
	vmErr, ok := err.(*VMError)
	if !ok {
		t.Fatalf("expected *VMError, got %v", err)
	}
	if vmErr.Offset != failOffset {
		t.Fatalf("want offset %d, got %d", failOffset, vmErr.Offset)
	}
}
