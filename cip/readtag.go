package cip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/enip"
)

// ReadTagBody is the CIP_ReadData (0x4C) leaf body: request carries the
// requested element count, response carries the tag's type code
// followed by its raw value bytes (spec.md §4.5).
type ReadTagBody struct {
	Elements uint16 // request

	TypeCode uint16 // response
	Raw      []byte // response
}

func (r *ReadTagBody) RequestSize() int { return 2 }

func (r *ReadTagBody) Encode(buf []byte) []byte {
	return binary.LittleEndian.AppendUint16(buf, r.Elements)
}

func (r *ReadTagBody) ResponseSize(buffered []byte) (int, bool) { return len(buffered), true }

func (r *ReadTagBody) Decode(data []byte) error {
	if len(data) < 2 {
		return enip.New(enip.KindFraming, "ReadTag reply truncated: have %d bytes", len(data))
	}
	r.TypeCode = binary.LittleEndian.Uint16(data[0:2])
	r.Raw = append([]byte(nil), data[2:]...)
	return nil
}

// Value decodes the response into a typed Value.
func (r *ReadTagBody) Value() (*Value, error) {
	return DecodeValue(r.TypeCode, r.Raw)
}
