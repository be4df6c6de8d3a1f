// Package value implements the tagged Value representation ClearVM's stack,
// globals, and constant pool all share.
//
// A Value is a small discriminated record: one of nil, bool, a signed
// 32-bit int, a 64-bit float, an instruction-pointer offset, a
// frame-pointer offset, or a reference into the heap (Object). There is no
// dynamic allocation for the scalar variants — they live directly in the
// Value struct, the same way the source VM's tagged union keeps them in a
// fixed-size payload.
//
// Every Value additionally carries Refs, the back-link list of open
// upvalues currently pointing at the stack slot the Value occupies. The
// list belongs to the slot: a push starts a new slot with an empty list,
// an overwrite of an existing slot (SET_LOCAL, SET_REF onto an open
// upvalue) keeps the slot's list, and POP walks the list of the value it
// removes — see pkg/vm/frame.go and pkg/vm/upvalue.go.
package value

import (
	"fmt"
	"math"
)

// Tag discriminates the variant a Value holds.
type Tag uint8

const (
	Nil Tag = iota
	Bool
	Int
	Num
	IP
	FP
	Obj
)

// String returns the tag's name, used in type-mismatch diagnostics.
func (t Tag) String() string {
	switch t {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Num:
		return "num"
	case IP:
		return "ip"
	case FP:
		return "fp"
	case Obj:
		return "obj"
	default:
		return "unknown"
	}
}

// Upvalue is implemented in pkg/vm (it needs to reach back into the stack),
// so Value.Refs holds the interface below rather than a concrete type.
// Closer is satisfied by *vm.Upvalue; Value itself has no notion of how
// closing works, only that it must happen before the slot disappears.
type Closer interface {
	Close(current Value)
}

// Value is the VM's universal runtime value.
type Value struct {
	tag     Tag
	boolean bool
	integer int32
	number  float64
	ip      int
	fp      int
	obj     Object

	// Refs is the back-link list of upvalues open on the slot this Value
	// currently occupies. It is transferred verbatim on assignment into a
	// slot that must preserve it (SET_LOCAL, SET_REF onto an open upvalue)
	// and walked+cleared on POP.
	Refs []Closer
}

// Tolerance used by NUM_LESS/NUM_GREATER, by EQUAL on nums, and by the
// BOOL conversion of a num (spec §4.4). Fixed, not configurable — see SPEC_FULL.md §5.
const Epsilon = 1e-7

// NilValue, True, and False are the three literal constants PUSH_NIL,
// PUSH_TRUE, and PUSH_FALSE push.
var (
	NilValue = Value{tag: Nil}
	True     = Value{tag: Bool, boolean: true}
	False    = Value{tag: Bool, boolean: false}
)

// MakeBool returns True or False. Use this instead of constructing with composite
// literals so the Refs field is never accidentally copied from an unrelated
// Value.
func MakeBool(b bool) Value {
	if b {
		return True
	}
	return False
}

func MakeInt(i int32) Value    { return Value{tag: Int, integer: i} }
func MakeNum(n float64) Value  { return Value{tag: Num, number: n} }
func MakeIP(ip int) Value      { return Value{tag: IP, ip: ip} }
func MakeFP(fp int) Value      { return Value{tag: FP, fp: fp} }
func MakeObj(o Object) Value   { return Value{tag: Obj, obj: o} }

func (v Value) Tag() Tag   { return v.tag }
func (v Value) IsNil() bool { return v.tag == Nil }

// AsBool, AsInt, AsNum, AsIP, AsFP, and AsObj do not check the tag: called
// against the wrong tag they return the zero value of the requested
// payload. Callers in pkg/vm check Tag() first, matching the teacher's
// pattern of type-asserting only after a discriminating switch.
func (v Value) AsBool() bool    { return v.boolean }
func (v Value) AsInt() int32    { return v.integer }
func (v Value) AsNum() float64  { return v.number }
func (v Value) AsIP() int       { return v.ip }
func (v Value) AsFP() int       { return v.fp }
func (v Value) AsObj() Object   { return v.obj }

// WithRefs returns a copy of v carrying refs as its back-link list. Used
// when overwriting a stack slot that must preserve the slot's existing
// upvalue references (SET_LOCAL; SET_REF onto an open upvalue).
func (v Value) WithRefs(refs []Closer) Value {
	v.Refs = refs
	return v
}

// Equal implements the EQUAL opcode: deep equality on nil/bool/int,
// epsilon-tolerant on num, pointer identity on heap objects (which, since
// strings are interned, is value identity for strings too).
func Equal(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case Nil:
		return true
	case Bool:
		return a.boolean == b.boolean
	case Int:
		return a.integer == b.integer
	case Num:
		return math.Abs(a.number-b.number) < Epsilon
	case IP:
		return a.ip == b.ip
	case FP:
		return a.fp == b.fp
	case Obj:
		return a.obj == b.obj
	default:
		return false
	}
}

// Print renders v the way the PRINT opcode and STR conversion do: strings
// print their raw bytes, everything else prints its canonical textual
// form. This is also what STR interns as a fresh string.
func Print(v Value) string {
	switch v.tag {
	case Nil:
		return "nil"
	case Bool:
		if v.boolean {
			return "true"
		}
		return "false"
	case Int:
		return fmt.Sprintf("%d", v.integer)
	case Num:
		return formatNum(v.number)
	case IP:
		return fmt.Sprintf("<ip %d>", v.ip)
	case FP:
		return fmt.Sprintf("<fp %d>", v.fp)
	case Obj:
		return v.obj.String()
	default:
		return "<invalid>"
	}
}

// formatNum mirrors the source VM's printf("%g")-style float formatting:
// integral floats print with no trailing ".0" (4.0 prints as "4"), matching
// what a compiler targeting this VM expects INT<->STR<->INT round trips to
// produce (spec §8).
func formatNum(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	return fmt.Sprintf("%g", n)
}
