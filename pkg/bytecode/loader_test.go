package bytecode

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Luminiscental/clearvm/pkg/intern"
	"github.com/Luminiscental/clearvm/pkg/value"
)

func buildHeader(t *testing.T, entries ...func() []byte) []byte {
	t.Helper()
	buf := []byte{byte(len(entries))}
	for _, e := range entries {
		buf = append(buf, e()...)
	}
	return buf
}

func intEntry(v int32) func() []byte {
	return func() []byte {
		b := make([]byte, 5)
		b[0] = byte(ConstInt)
		binary.LittleEndian.PutUint32(b[1:], uint32(v))
		return b
	}
}

func numEntry(v float64) func() []byte {
	return func() []byte {
		b := make([]byte, 9)
		b[0] = byte(ConstNum)
		binary.LittleEndian.PutUint64(b[1:], math.Float64bits(v))
		return b
	}
}

func strEntry(s string) func() []byte {
	return func() []byte {
		b := []byte{byte(ConstStr), byte(len(s))}
		return append(b, s...)
	}
}

func TestLoadConstants(t *testing.T) {
	buf := buildHeader(t, intEntry(-7), numEntry(2.5), strEntry("hi"))
	buf = append(buf, byte(Print)) // trailing instruction stream

	heap := value.NewHeap()
	var table intern.Table
	img, err := Load(buf, heap, &table)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(img.Constants) != 3 {
		t.Fatalf("expected 3 constants, got %d", len(img.Constants))
	}
	if img.Constants[0].AsInt() != -7 {
		t.Errorf("constant 0: want -7, got %d", img.Constants[0].AsInt())
	}
	if img.Constants[1].AsNum() != 2.5 {
		t.Errorf("constant 1: want 2.5, got %v", img.Constants[1].AsNum())
	}
	if got := img.Constants[2].AsObj().String(); got != "hi" {
		t.Errorf("constant 2: want \"hi\", got %q", got)
	}
	if len(img.Code) != 1 || img.Code[0] != byte(Print) {
		t.Errorf("expected code to be the trailing PRINT byte, got %v", img.Code)
	}
}

func TestLoadInternsRepeatedStrings(t *testing.T) {
	buf := buildHeader(t, strEntry("hi"), strEntry("hi"))

	heap := value.NewHeap()
	var table intern.Table
	img, err := Load(buf, heap, &table)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	a := img.Constants[0].AsObj()
	b := img.Constants[1].AsObj()
	if a != b {
		t.Fatalf("two identical CONST_STR entries should intern to the same object, got %p and %p", a, b)
	}
	if heap.Len() != 1 {
		t.Fatalf("expected exactly one heap allocation for the shared string, got %d", heap.Len())
	}
}

func TestLoadTruncatedHeader(t *testing.T) {
	heap := value.NewHeap()
	var table intern.Table
	if _, err := Load(nil, heap, &table); err == nil {
		t.Fatal("expected error for empty buffer")
	}
}

func TestLoadTruncatedIntPayload(t *testing.T) {
	buf := []byte{1, byte(ConstInt), 0x01, 0x02}
	heap := value.NewHeap()
	var table intern.Table
	if _, err := Load(buf, heap, &table); err == nil {
		t.Fatal("expected truncation error for short int payload")
	}
}

func TestLoadUnknownTag(t *testing.T) {
	buf := []byte{1, 0xFF}
	heap := value.NewHeap()
	var table intern.Table
	if _, err := Load(buf, heap, &table); err == nil {
		t.Fatal("expected error for unknown constant tag")
	}
}

func TestLoadTruncatedStringPayload(t *testing.T) {
	buf := []byte{1, byte(ConstStr), 0xFF}
	heap := value.NewHeap()
	var table intern.Table
	if _, err := Load(buf, heap, &table); err == nil {
		t.Fatal("expected truncation error for declared-but-missing string bytes")
	}
}

func TestOperandBytesKnownOpcodes(t *testing.T) {
	cases := map[Op]int{
		PushConst:    1,
		PushTrue:     0,
		ExtractField: 2,
		Call:         1,
		Not:          0,
	}
	for op, want := range cases {
		if got := OperandBytes(op); got != want {
			t.Errorf("OperandBytes(%s) = %d, want %d", op, got, want)
		}
	}
}

func TestOpcodeStringRoundTrip(t *testing.T) {
	if PushConst.String() != "PUSH_CONST" {
		t.Errorf("unexpected mnemonic: %s", PushConst.String())
	}
	if Op(250).String() != "UNKNOWN_OP" {
		t.Errorf("expected unknown opcode rendering, got %s", Op(250).String())
	}
}
