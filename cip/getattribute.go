package cip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/enip"
)

// AttrDecoder decodes the raw response bytes of a Get_Attribute_Single
// reply into a Go value. Different Identity attributes use different
// wire shapes (u16, u32, length-prefixed string), so the caller picks
// the decoder rather than GetAttributeSingleBody assuming one shape for
// every attribute (spec.md Design Note (b)).
type AttrDecoder func(raw []byte) (interface{}, error)

// DecodeUint16 decodes a little-endian 16-bit attribute value.
func DecodeUint16(raw []byte) (interface{}, error) {
	if len(raw) < 2 {
		return nil, enip.New(enip.KindFraming, "attribute reply truncated: have %d bytes, need 2", len(raw))
	}
	return binary.LittleEndian.Uint16(raw[:2]), nil
}

// DecodeUint32 decodes a little-endian 32-bit attribute value.
func DecodeUint32(raw []byte) (interface{}, error) {
	if len(raw) < 4 {
		return nil, enip.New(enip.KindFraming, "attribute reply truncated: have %d bytes, need 4", len(raw))
	}
	return binary.LittleEndian.Uint32(raw[:4]), nil
}

// DecodeShortString decodes a u8-length-prefixed ASCII string.
func DecodeShortString(raw []byte) (interface{}, error) {
	if len(raw) < 1 {
		return nil, enip.New(enip.KindFraming, "attribute reply truncated: missing length byte")
	}
	n := int(raw[0])
	if len(raw) < 1+n {
		return nil, enip.New(enip.KindFraming, "attribute reply truncated: length %d exceeds %d remaining bytes", n, len(raw)-1)
	}
	return string(raw[1 : 1+n]), nil
}

// GetAttributeSingleBody is the Get_Attribute_Single (0x0E) leaf body.
// It has no request payload beyond the MessageRouter path; the response
// is decoded by the caller-supplied Decoder.
type GetAttributeSingleBody struct {
	Decoder AttrDecoder

	Value interface{}
}

func (g *GetAttributeSingleBody) RequestSize() int { return 0 }
func (g *GetAttributeSingleBody) Encode(buf []byte) []byte { return buf }
func (g *GetAttributeSingleBody) ResponseSize(buffered []byte) (int, bool) { return len(buffered), true }

func (g *GetAttributeSingleBody) Decode(data []byte) error {
	v, err := g.Decoder(data)
	if err != nil {
		return err
	}
	g.Value = v
	return nil
}
