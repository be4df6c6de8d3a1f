// Package bytecode defines ClearVM's instruction encoding — the opcode
// byte table and the constant-pool/instruction-stream wire format — and
// the loader that turns a raw byte buffer into a ready-to-run image.
package bytecode

// Op is a single ClearVM instruction byte. The numeric values are this
// implementation's own encoding (the original source's encoding is not
// preserved across languages); what matters is that loader and dispatcher
// agree, which they do by sharing this table.
type Op byte

const (
	// Constants and literals
	PushConst Op = iota
	PushTrue
	PushFalse
	PushNil

	// Variables
	SetGlobal
	PushGlobal
	SetLocal
	PushLocal

	// Type conversions
	OpInt
	OpBool
	OpNum
	OpStr

	// Environment
	Clock
	Print

	// Stack discipline
	Pop
	Squash

	// Arithmetic and string
	IntNeg
	NumNeg
	IntAdd
	IntSub
	IntMul
	IntDiv
	NumAdd
	NumSub
	NumMul
	NumDiv
	StrCat
	Not

	// Comparison
	IntLess
	IntGreater
	NumLess
	NumGreater
	Equal

	// Control flow
	Jump
	JumpIfFalse
	Loop

	// Functions
	Function
	Call
	LoadIP
	LoadFP
	SetReturn
	PushReturn

	// Structs
	Struct
	Destruct
	GetField
	ExtractField
	SetField
	InsertField

	// Upvalues and references
	RefLocal
	Deref
	SetRef

	// Type tests
	IsValType
	IsObjType

	opCount
)

// operandBytes gives the immediate operand width, in bytes, each opcode
// consumes from the instruction stream after its own byte. Every non-zero
// entry here is a single u8 per spec §4.4, except EXTRACT_FIELD and
// INSERT_FIELD which take two (offset, then index).
var operandBytes = [opCount]int{
	PushConst:    1,
	SetGlobal:    1,
	PushGlobal:   1,
	SetLocal:     1,
	PushLocal:    1,
	Jump:         1,
	JumpIfFalse:  1,
	Loop:         1,
	Function:     1,
	Call:         1,
	Struct:       1,
	Destruct:     1,
	GetField:     1,
	ExtractField: 2,
	SetField:     1,
	InsertField:  2,
	RefLocal:     1,
	IsValType:    1,
	IsObjType:    1,
}

// OperandBytes reports how many immediate bytes follow op in the
// instruction stream.
func OperandBytes(op Op) int {
	if int(op) < 0 || int(op) >= int(opCount) {
		return 0
	}
	return operandBytes[op]
}

// Valid reports whether op names a known instruction.
func Valid(op Op) bool {
	return op < opCount
}

var names = [opCount]string{
	PushConst:    "PUSH_CONST",
	PushTrue:     "PUSH_TRUE",
	PushFalse:    "PUSH_FALSE",
	PushNil:      "PUSH_NIL",
	SetGlobal:    "SET_GLOBAL",
	PushGlobal:   "PUSH_GLOBAL",
	SetLocal:     "SET_LOCAL",
	PushLocal:    "PUSH_LOCAL",
	OpInt:        "INT",
	OpBool:       "BOOL",
	OpNum:        "NUM",
	OpStr:        "STR",
	Clock:        "CLOCK",
	Print:        "PRINT",
	Pop:          "POP",
	Squash:       "SQUASH",
	IntNeg:       "INT_NEG",
	NumNeg:       "NUM_NEG",
	IntAdd:       "INT_ADD",
	IntSub:       "INT_SUB",
	IntMul:       "INT_MUL",
	IntDiv:       "INT_DIV",
	NumAdd:       "NUM_ADD",
	NumSub:       "NUM_SUB",
	NumMul:       "NUM_MUL",
	NumDiv:       "NUM_DIV",
	StrCat:       "STR_CAT",
	Not:          "NOT",
	IntLess:      "INT_LESS",
	IntGreater:   "INT_GREATER",
	NumLess:      "NUM_LESS",
	NumGreater:   "NUM_GREATER",
	Equal:        "EQUAL",
	Jump:         "JUMP",
	JumpIfFalse:  "JUMP_IF_FALSE",
	Loop:         "LOOP",
	Function:     "FUNCTION",
	Call:         "CALL",
	LoadIP:       "LOAD_IP",
	LoadFP:       "LOAD_FP",
	SetReturn:    "SET_RETURN",
	PushReturn:   "PUSH_RETURN",
	Struct:       "STRUCT",
	Destruct:     "DESTRUCT",
	GetField:     "GET_FIELD",
	ExtractField: "EXTRACT_FIELD",
	SetField:     "SET_FIELD",
	InsertField:  "INSERT_FIELD",
	RefLocal:     "REF_LOCAL",
	Deref:        "DEREF",
	SetRef:       "SET_REF",
	IsValType:    "IS_VAL_TYPE",
	IsObjType:    "IS_OBJ_TYPE",
}

// String renders op's mnemonic, used in diagnostics and disassembly-style
// test failure messages. Unknown opcodes render as "UNKNOWN_OP".
func (op Op) String() string {
	if !Valid(op) || names[op] == "" {
		return "UNKNOWN_OP"
	}
	return names[op]
}

// ConstTag identifies a constant pool entry's payload type (spec §4.1,
// §6): 0 = INT, 1 = NUM, 2 = STR.
type ConstTag byte

const (
	ConstInt ConstTag = iota
	ConstNum
	ConstStr
)
