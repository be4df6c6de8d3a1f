package bytecode

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/Luminiscental/clearvm/pkg/intern"
	"github.com/Luminiscental/clearvm/pkg/value"
)

// MaxConstants and MaxStringLen are the hard limits spec §5 fixes on the
// constant pool loader's inputs.
const (
	MaxConstants = 256
	MaxStringLen = 255
)

// ErrTruncated and ErrUnknownConstTag are wrapped (via github.com/pkg/errors)
// into the loader's returned errors so callers can match on them with
// errors.Is/Cause, while pkg/vm's VM.Load still reduces every loader
// failure to a single vm.VMError{Kind: KindDecode}.
var (
	ErrTruncated       = errors.New("bytecode: truncated buffer")
	ErrUnknownConstTag = errors.New("bytecode: unknown constant tag")
)

// Image is a fully-loaded bytecode unit: the constant pool plus the
// instruction stream that follows it, ready for the dispatch loop.
type Image struct {
	Constants []value.Value
	Code      []byte
}

// Interner is the subset of *intern.Table the loader needs to intern
// CONST_STR payloads, expressed as an interface so Load accepts any
// interner with this method; *intern.Table satisfies it.
type Interner interface {
	Intern(bytes []byte, alloc func([]byte, uint32) *value.String) *value.String
}

var _ Interner = (*intern.Table)(nil)

// Load parses buf's constant-pool header (spec §4.1, wire format §6) and
// returns an Image whose Code is the remaining instruction stream. Strings
// are interned into table and allocated on heap as they're encountered,
// exactly once each regardless of how many CONST_STR entries share the
// same bytes.
func Load(buf []byte, heap *value.Heap, table Interner) (*Image, error) {
	if len(buf) < 1 {
		return nil, errors.Wrap(ErrTruncated, "missing constant_count header")
	}
	count := int(buf[0])
	if count > MaxConstants {
		return nil, errors.Errorf("bytecode: constant_count %d exceeds max %d", count, MaxConstants)
	}

	offset := 1
	constants := make([]value.Value, 0, count)

	for i := 0; i < count; i++ {
		if offset >= len(buf) {
			return nil, errors.Wrapf(ErrTruncated, "constant %d: missing tag", i)
		}
		tag := ConstTag(buf[offset])
		offset++

		switch tag {
		case ConstInt:
			if offset+4 > len(buf) {
				return nil, errors.Wrapf(ErrTruncated, "constant %d: truncated int payload", i)
			}
			bits := binary.LittleEndian.Uint32(buf[offset : offset+4])
			offset += 4
			constants = append(constants, value.MakeInt(int32(bits)))

		case ConstNum:
			if offset+8 > len(buf) {
				return nil, errors.Wrapf(ErrTruncated, "constant %d: truncated num payload", i)
			}
			bits := binary.LittleEndian.Uint64(buf[offset : offset+8])
			offset += 8
			constants = append(constants, value.MakeNum(math.Float64frombits(bits)))

		case ConstStr:
			if offset >= len(buf) {
				return nil, errors.Wrapf(ErrTruncated, "constant %d: missing string length", i)
			}
			length := int(buf[offset])
			offset++
			if length > MaxStringLen {
				return nil, errors.Errorf("bytecode: constant %d: string length %d exceeds max %d", i, length, MaxStringLen)
			}
			if offset+length > len(buf) {
				return nil, errors.Wrapf(ErrTruncated, "constant %d: truncated string payload", i)
			}
			raw := buf[offset : offset+length]
			offset += length

			str := table.Intern(raw, func(bytes []byte, hash uint32) *value.String {
				cp := make([]byte, len(bytes))
				copy(cp, bytes)
				s := &value.String{Bytes: cp, Hash: hash}
				heap.Alloc(s)
				return s
			})
			constants = append(constants, value.MakeObj(str))

		default:
			return nil, errors.Wrapf(ErrUnknownConstTag, "constant %d: tag %d", i, tag)
		}
	}

	return &Image{Constants: constants, Code: buf[offset:]}, nil
}
