// Package asmtest is a minimal hand-rolled assembler used only by pkg/vm's
// tests. ClearVM's compiler is explicitly out of
// scope (spec §1: "external collaborator"), so the test suite needs its
// own small way to produce byte buffers without depending on one.
package asmtest

import (
	"encoding/binary"
	"math"

	"github.com/Luminiscental/clearvm/pkg/bytecode"
)

type constEntry struct {
	tag bytecode.ConstTag
	i   int32
	n   float64
	s   string
}

// Builder accumulates a constant pool and an instruction stream, then
// renders them into the wire format pkg/bytecode.Load consumes.
type Builder struct {
	consts []constEntry
	code   []byte
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// ConstInt, ConstNum, and ConstStr append a constant pool entry and
// return its index for use with Emit(bytecode.PushConst, idx).
func (b *Builder) ConstInt(v int32) byte {
	b.consts = append(b.consts, constEntry{tag: bytecode.ConstInt, i: v})
	return byte(len(b.consts) - 1)
}

func (b *Builder) ConstNum(v float64) byte {
	b.consts = append(b.consts, constEntry{tag: bytecode.ConstNum, n: v})
	return byte(len(b.consts) - 1)
}

func (b *Builder) ConstStr(s string) byte {
	b.consts = append(b.consts, constEntry{tag: bytecode.ConstStr, s: s})
	return byte(len(b.consts) - 1)
}

// Emit appends op and its operand bytes (if any) to the instruction
// stream, returning the offset of the opcode byte.
func (b *Builder) Emit(op bytecode.Op, operands ...byte) int {
	offset := len(b.code)
	b.code = append(b.code, byte(op))
	b.code = append(b.code, operands...)
	return offset
}

// Here reports the current end of the instruction stream, i.e. the
// offset the next Emit call will use.
func (b *Builder) Here() int {
	return len(b.code)
}

// EmitJump emits op with a placeholder operand byte and returns the
// operand's offset, to be resolved later with PatchJump. Used for
// forward jumps (JUMP, JUMP_IF_FALSE, FUNCTION) whose target isn't known
// until more code has been emitted.
func (b *Builder) EmitJump(op bytecode.Op) int {
	b.Emit(op, 0)
	return len(b.code) - 1
}

// PatchJump sets the placeholder operand at operandOffset so the jump
// lands at the current end of the instruction stream.
func (b *Builder) PatchJump(operandOffset int) {
	target := len(b.code)
	off := target - (operandOffset + 1)
	b.code[operandOffset] = byte(off)
}

// EmitLoop emits a LOOP instruction jumping back to targetOffset, which
// must already have been emitted.
func (b *Builder) EmitLoop(targetOffset int) {
	opOffset := b.Emit(bytecode.Loop, 0)
	ipAfterOperand := opOffset + 2
	off := ipAfterOperand - targetOffset
	b.code[opOffset+1] = byte(off)
}

// Bytes renders the accumulated constants and instructions into
// ClearVM's wire format (spec §6): constant_count:u8, then each
// constant's tag+payload, then the raw instruction stream.
func (b *Builder) Bytes() []byte {
	buf := []byte{byte(len(b.consts))}
	for _, c := range b.consts {
		switch c.tag {
		case bytecode.ConstInt:
			entry := make([]byte, 5)
			entry[0] = byte(bytecode.ConstInt)
			binary.LittleEndian.PutUint32(entry[1:], uint32(c.i))
			buf = append(buf, entry...)
		case bytecode.ConstNum:
			entry := make([]byte, 9)
			entry[0] = byte(bytecode.ConstNum)
			binary.LittleEndian.PutUint64(entry[1:], math.Float64bits(c.n))
			buf = append(buf, entry...)
		case bytecode.ConstStr:
			entry := append([]byte{byte(bytecode.ConstStr), byte(len(c.s))}, c.s...)
			buf = append(buf, entry...)
		}
	}
	return append(buf, b.code...)
}
