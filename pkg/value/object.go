package value

import "fmt"

// ObjKind discriminates the heap-allocated object kinds, mirroring
// ClearVM's original ObjType enum (OBJ_STRING, OBJ_FUNCTION, OBJ_CLOSURE,
// OBJ_UPVALUE, OBJ_STRUCT).
type ObjKind uint8

const (
	KindString ObjKind = iota
	KindFunction
	KindClosure
	KindUpvalue
	KindStruct
)

func (k ObjKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindClosure:
		return "closure"
	case KindUpvalue:
		return "upvalue"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Object is satisfied by every heap-allocated value kind. Identity
// (pointer equality on the concrete *String/*Struct/etc.) is what Equal
// uses for Obj-tagged values, which is exactly value identity for
// interned strings.
type Object interface {
	Kind() ObjKind
	String() string
}

// String is an interned, immutable byte sequence. The intern table in
// pkg/intern guarantees at most one *String exists for any given byte
// content, so pointer comparison between two Obj-tagged Values both
// wrapping *String is content comparison.
type String struct {
	Bytes []byte
	Hash  uint32
}

func (s *String) Kind() ObjKind { return KindString }
func (s *String) String() string { return string(s.Bytes) }

// FunctionProto is a compiled function body: a Go slice into the owning
// bytecode image's instruction stream rather than a copy, standing in for
// the source's ObjFunction{code, ip, size} triple.
type FunctionProto struct {
	Code []byte
}

func (f *FunctionProto) Kind() ObjKind { return KindFunction }
func (f *FunctionProto) String() string {
	return fmt.Sprintf("<function %p>", f)
}

// Closure pairs a FunctionProto with the upvalues it captured. No opcode
// handler allocates one: FUNCTION pushes a bare ip value.
type Closure struct {
	Proto    *FunctionProto
	Upvalues []Object // each element is a *Upvalue
}

func (c *Closure) Kind() ObjKind { return KindClosure }
func (c *Closure) String() string {
	return fmt.Sprintf("<closure %p>", c)
}

// Upvalue is implemented concretely in pkg/vm (it needs direct access to
// the VM's stack to know whether it is still open), but the heap and the
// Struct/Closure object kinds only need to hold it as an opaque Object, so
// no concrete type lives here.

// Struct is a fixed-arity tuple of fields, addressed by small-integer
// index (GET_FIELD/SET_FIELD), mirroring ObjStruct{fields, fieldCount}.
type Struct struct {
	Fields []Value
}

func (s *Struct) Kind() ObjKind { return KindStruct }
func (s *Struct) String() string {
	return fmt.Sprintf("<struct %p>", s)
}

// GetField returns Fields[index] and true, or the zero Value and false if
// index is out of range — callers translate the false case into a RANGE
// VMError.
func (s *Struct) GetField(index int) (Value, bool) {
	if index < 0 || index >= len(s.Fields) {
		return Value{}, false
	}
	return s.Fields[index], true
}

// SetField overwrites Fields[index], returning false (and leaving the
// struct untouched) if index is out of range.
func (s *Struct) SetField(index int, v Value) bool {
	if index < 0 || index >= len(s.Fields) {
		return false
	}
	s.Fields[index] = v
	return true
}
