package cip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/enip"
)

type logicalType byte
type logicalFormat byte

const (
	segmentLogical  byte = 0b001
	segmentSymbolic byte = 0b011

	logicalClassID     logicalType = 0x0
	logicalInstanceID  logicalType = 0b1
	logicalAttributeID logicalType = 0b100

	logicalFormat8  logicalFormat = 0b0
	logicalFormat16 logicalFormat = 0b1
)

// Path is an encoded CIP path: the packed segments a MessageRouter
// frame addresses, without the leading word-length byte (the enclosing
// MessageRouter computes that from len(Path)/2).
type Path []byte

// WordLen returns the path length in 16-bit words, as required by the
// MessageRouter frame's path_word_len byte.
func (p Path) WordLen() byte {
	return byte(len(p) / 2)
}

// PathBuilder fluently composes a Path from class/instance/attribute and
// symbolic tag segments.
type PathBuilder struct {
	path Path
	err  error
}

// NewPath starts a new path builder.
func NewPath() *PathBuilder {
	return &PathBuilder{}
}

func (b *PathBuilder) append(seg []byte, err error) *PathBuilder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = err
		return b
	}
	b.path = append(b.path, seg...)
	return b
}

// Class appends an 8-bit logical class segment.
func (b *PathBuilder) Class(id byte) *PathBuilder {
	return b.append(logicalSegment(logicalClassID, logicalFormat8, []byte{id}))
}

// Instance appends an 8-bit logical instance segment.
func (b *PathBuilder) Instance(id byte) *PathBuilder {
	return b.append(logicalSegment(logicalInstanceID, logicalFormat8, []byte{id}))
}

// Attribute appends an 8-bit logical attribute segment.
func (b *PathBuilder) Attribute(id byte) *PathBuilder {
	return b.append(logicalSegment(logicalAttributeID, logicalFormat8, []byte{id}))
}

// Symbol appends the symbolic/element segments for a (possibly dotted,
// possibly indexed) tag name, e.g. "Program:MainProgram.Array[5].Member".
func (b *PathBuilder) Symbol(tag string) *PathBuilder {
	for _, part := range splitTagPath(tag) {
		if part.isIndex {
			b = b.append(elementSegment(part.index))
		} else {
			b = b.append(symbolicSegment(part.name))
		}
	}
	return b
}

// Build finalizes the path, padding to an even byte length as required
// for word-aligned framing.
func (b *PathBuilder) Build() (Path, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := append(Path{}, b.path...)
	if len(out)%2 != 0 {
		out = append(out, 0x00)
	}
	return out, nil
}

// logicalSegment packs an 8- or 16-bit logical segment. 16-bit formats
// carry an interior pad byte for word alignment, per ODVA 1.4.
func logicalSegment(lt logicalType, lf logicalFormat, value []byte) ([]byte, error) {
	switch lf {
	case logicalFormat8:
		if len(value) != 1 {
			return nil, enip.New(enip.KindArgument, "8-bit logical segment requires 1 byte, got %d", len(value))
		}
	case logicalFormat16:
		if len(value) != 2 {
			return nil, enip.New(enip.KindArgument, "16-bit logical segment requires 2 bytes, got %d", len(value))
		}
	default:
		return nil, enip.New(enip.KindArgument, "unsupported logical segment format %v", lf)
	}

	out := make([]byte, 1, 2+len(value))
	out[0] = (segmentLogical&0b111)<<5 | (byte(lt)&0b111)<<2 | byte(lf)&0b11
	if lf == logicalFormat16 {
		out = append(out, 0x00)
	}
	return append(out, value...), nil
}

// symbolicSegment encodes an ASCII symbolic segment: type byte 0x91,
// length, the ASCII bytes, and a trailing pad byte if the result would
// be odd-length.
func symbolicSegment(name string) ([]byte, error) {
	if len(name) == 0 {
		return nil, enip.New(enip.KindArgument, "symbolic segment name is empty")
	}
	if len(name) > 255 {
		return nil, enip.New(enip.KindArgument, "symbolic segment name too long: %d bytes", len(name))
	}
	out := []byte{0x91, byte(len(name))}
	out = append(out, name...)
	if len(out)%2 != 0 {
		out = append(out, 0x00)
	}
	return out, nil
}

// elementSegment encodes a numeric array/member index, using the 1-byte
// short form below 256, the 2-byte padded form up to 0xFFFF, and the
// 4-byte padded form above that.
func elementSegment(index uint32) ([]byte, error) {
	switch {
	case index <= 0xFF:
		return []byte{0x28, byte(index)}, nil
	case index <= 0xFFFF:
		return []byte{0x29, 0x00, byte(index), byte(index >> 8)}, nil
	default:
		buf := []byte{0x2A, 0x00}
		return binary.LittleEndian.AppendUint32(buf, index), nil
	}
}

type tagPathPart struct {
	name    string
	index   uint32
	isIndex bool
}

// splitTagPath splits a tag path on '.' into symbolic components and
// '[n]' into element-index components. ':' is not a separator —
// "Program:MainProgram" is one symbolic segment.
func splitTagPath(tag string) []tagPathPart {
	var parts []tagPathPart
	current := ""

	for i := 0; i < len(tag); i++ {
		switch ch := tag[i]; ch {
		case '.':
			if current != "" {
				parts = append(parts, tagPathPart{name: current})
				current = ""
			}
		case '[':
			if current != "" {
				parts = append(parts, tagPathPart{name: current})
				current = ""
			}
			j := i + 1
			for j < len(tag) && tag[j] != ']' {
				j++
			}
			var idx uint32
			for _, c := range tag[i+1 : j] {
				if c >= '0' && c <= '9' {
					idx = idx*10 + uint32(c-'0')
				}
			}
			parts = append(parts, tagPathPart{index: idx, isIndex: true})
			i = j
		default:
			current += string(ch)
		}
	}
	if current != "" {
		parts = append(parts, tagPathPart{name: current})
	}
	return parts
}
