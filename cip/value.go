package cip

import (
	"encoding/binary"
	"math"

	"github.com/renej-github/etherip/enip"
)

// CIP elementary type codes this client recognizes (spec.md §3).
const (
	TypeBOOL  uint16 = 0x00C1
	TypeSINT  uint16 = 0x00C2
	TypeINT   uint16 = 0x00C3
	TypeDINT  uint16 = 0x00C4
	TypeLINT  uint16 = 0x00C5
	TypeREAL  uint16 = 0x00CA
	TypeLREAL uint16 = 0x00CB
	TypeBITS  uint16 = 0x00D3

	// TypeSTRING is the Logix STRING structure: type code 0x02A0, a
	// structure handle prelude 0xCE 0x0F, 16-bit pad, 32-bit length,
	// then up to 82 characters; length and characters are padded to an
	// 88-byte slot.
	TypeSTRING uint16 = 0x02A0
)

// stringHandle is the structure handle that precedes a STRING's length
// on the wire (spec.md §3, §4.1).
const stringHandle uint16 = 0x0FCE

// stringSlotWidth is the controller's fixed STRING character slot width.
const stringSlotWidth = 82

func elementSize(typeCode uint16) (int, bool) {
	switch typeCode {
	case TypeBOOL, TypeSINT:
		return 1, true
	case TypeINT:
		return 2, true
	case TypeDINT, TypeREAL, TypeBITS:
		return 4, true
	case TypeLINT, TypeLREAL:
		return 8, true
	default:
		return 0, false
	}
}

// Value is a typed CIP payload: a 16-bit type code, an element count and
// the little-endian bytes that encode it. For TypeSTRING, Elements is
// always 1 and Bytes holds the decoded character data (not the wire
// prelude/padding).
type Value struct {
	TypeCode uint16
	Elements int
	Bytes    []byte
}

// NewScalar builds a single-element Value of the given type from a
// signed integer, rejecting non-integer types. The value is truncated to
// the type's width; an out-of-range value is not rejected.
func NewScalar(typeCode uint16, v int64) (*Value, error) {
	return newIntValue(typeCode, 1, []int64{v})
}

// NewArray builds an n-element Value of the given integer type.
func NewArray(typeCode uint16, v []int64) (*Value, error) {
	return newIntValue(typeCode, len(v), v)
}

func newIntValue(typeCode uint16, elements int, v []int64) (*Value, error) {
	if elements < 1 {
		return nil, enip.New(enip.KindArgument, "element count must be >= 1, got %d", elements)
	}
	size, ok := elementSize(typeCode)
	if !ok || typeCode == TypeREAL || typeCode == TypeLREAL {
		return nil, enip.New(enip.KindArgument, "type 0x%04X is not an integer type", typeCode)
	}
	out := make([]byte, 0, size*elements)
	for _, n := range v {
		out = appendInt(out, typeCode, n)
	}
	return &Value{TypeCode: typeCode, Elements: elements, Bytes: out}, nil
}

// NewFloat builds a single-element REAL or LREAL Value.
func NewFloat(typeCode uint16, v float64) (*Value, error) {
	switch typeCode {
	case TypeREAL:
		return &Value{TypeCode: typeCode, Elements: 1, Bytes: binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(v)))}, nil
	case TypeLREAL:
		return &Value{TypeCode: typeCode, Elements: 1, Bytes: binary.LittleEndian.AppendUint64(nil, math.Float64bits(v))}, nil
	default:
		return nil, enip.New(enip.KindArgument, "type 0x%04X is not a float type", typeCode)
	}
}

// NewString builds a TypeSTRING Value, erroring rather than truncating
// when the string exceeds the controller's 82-character slot (spec.md
// §8 numeric boundary: "raise argument").
func NewString(s string) (*Value, error) {
	if len(s) > stringSlotWidth {
		return nil, enip.New(enip.KindArgument, "string of %d characters exceeds %d-character slot", len(s), stringSlotWidth)
	}
	return &Value{TypeCode: TypeSTRING, Elements: 1, Bytes: []byte(s)}, nil
}

func appendInt(buf []byte, typeCode uint16, n int64) []byte {
	switch typeCode {
	case TypeBOOL, TypeSINT:
		return append(buf, byte(int8(n)))
	case TypeINT:
		return binary.LittleEndian.AppendUint16(buf, uint16(int16(n)))
	case TypeDINT, TypeBITS:
		return binary.LittleEndian.AppendUint32(buf, uint32(int32(n)))
	case TypeLINT:
		return binary.LittleEndian.AppendUint64(buf, uint64(n))
	default:
		return buf
	}
}

// Encode writes the value's raw payload bytes (no type code, no element
// count — those are framed by the enclosing ReadTag/WriteTag body) onto
// buf. STRING values are encoded with the structure-handle prelude, the
// characters zero-padded to the fixed slot width, and two trailing pad
// bytes, so length plus characters fill 88 bytes.
func (v *Value) Encode(buf []byte) []byte {
	if v.TypeCode == TypeSTRING {
		buf = binary.LittleEndian.AppendUint16(buf, stringHandle)
		buf = binary.LittleEndian.AppendUint16(buf, 0) // pad
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.Bytes)))
		buf = append(buf, v.Bytes...)
		for i := len(v.Bytes); i < stringSlotWidth+2; i++ {
			buf = append(buf, 0)
		}
		return buf
	}
	return append(buf, v.Bytes...)
}

// EncodedSize returns the number of bytes Encode will append.
func (v *Value) EncodedSize() int {
	if v.TypeCode == TypeSTRING {
		return 2 + 2 + 4 + stringSlotWidth + 2
	}
	size, _ := elementSize(v.TypeCode)
	return size * v.Elements
}

// DecodeValue parses typeCode/raw into a Value. For TypeSTRING, raw is
// expected to start at the structure handle (the 0x02A0 type code
// itself is carried by the enclosing ReadTag response, not here).
func DecodeValue(typeCode uint16, raw []byte) (*Value, error) {
	if typeCode == TypeSTRING {
		if len(raw) < 8 {
			return nil, enip.New(enip.KindFraming, "STRING payload truncated: have %d bytes", len(raw))
		}
		handle := binary.LittleEndian.Uint16(raw[0:2])
		if handle != stringHandle {
			return nil, enip.New(enip.KindFraming, "STRING structure handle mismatch: got 0x%04X, want 0x%04X", handle, stringHandle)
		}
		length := binary.LittleEndian.Uint32(raw[4:8])
		if int(8+length) > len(raw) {
			return nil, enip.New(enip.KindFraming, "STRING payload truncated: length %d exceeds %d remaining bytes", length, len(raw)-8)
		}
		return &Value{TypeCode: typeCode, Elements: 1, Bytes: append([]byte(nil), raw[8:8+length]...)}, nil
	}

	size, ok := elementSize(typeCode)
	if !ok {
		return nil, enip.New(enip.KindTypeMismatch, "unrecognized CIP type code 0x%04X", typeCode)
	}
	if len(raw) == 0 || len(raw)%size != 0 {
		return nil, enip.New(enip.KindFraming, "payload length %d is not a multiple of element size %d", len(raw), size)
	}
	return &Value{TypeCode: typeCode, Elements: len(raw) / size, Bytes: append([]byte(nil), raw...)}, nil
}

// Int returns element i widened to int64. Works for BOOL/SINT/INT/DINT/LINT/BITS.
func (v *Value) Int(i int) (int64, error) {
	size, ok := elementSize(v.TypeCode)
	if !ok || v.TypeCode == TypeREAL || v.TypeCode == TypeLREAL {
		return 0, enip.New(enip.KindTypeMismatch, "type 0x%04X is not an integer type", v.TypeCode)
	}
	off := i * size
	if off+size > len(v.Bytes) {
		return 0, enip.New(enip.KindArgument, "element index %d out of range", i)
	}
	switch v.TypeCode {
	case TypeBOOL, TypeSINT:
		return int64(int8(v.Bytes[off])), nil
	case TypeINT:
		return int64(int16(binary.LittleEndian.Uint16(v.Bytes[off:]))), nil
	case TypeDINT:
		return int64(int32(binary.LittleEndian.Uint32(v.Bytes[off:]))), nil
	case TypeBITS:
		return int64(binary.LittleEndian.Uint32(v.Bytes[off:])), nil
	case TypeLINT:
		return int64(binary.LittleEndian.Uint64(v.Bytes[off:])), nil
	default:
		return 0, enip.New(enip.KindTypeMismatch, "type 0x%04X is not an integer type", v.TypeCode)
	}
}

// Float returns element i widened to float64. Works for REAL and LREAL.
func (v *Value) Float(i int) (float64, error) {
	size, _ := elementSize(v.TypeCode)
	off := i * size
	switch v.TypeCode {
	case TypeREAL:
		if off+4 > len(v.Bytes) {
			return 0, enip.New(enip.KindArgument, "element index %d out of range", i)
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(v.Bytes[off:]))), nil
	case TypeLREAL:
		if off+8 > len(v.Bytes) {
			return 0, enip.New(enip.KindArgument, "element index %d out of range", i)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(v.Bytes[off:])), nil
	default:
		return 0, enip.New(enip.KindTypeMismatch, "type 0x%04X is not a float type", v.TypeCode)
	}
}

// String returns the value as a string. Works only for TypeSTRING.
func (v *Value) String() (string, error) {
	if v.TypeCode != TypeSTRING {
		return "", enip.New(enip.KindTypeMismatch, "type 0x%04X is not STRING", v.TypeCode)
	}
	return string(v.Bytes), nil
}
