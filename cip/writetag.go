package cip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/enip"
)

// WriteTagBody is the CIP_WriteData (0x4D) leaf body: request carries
// the value's type code, element count and raw payload; the response
// body is empty on success (spec.md §4.5).
type WriteTagBody struct {
	Value *Value
}

func (w *WriteTagBody) RequestSize() int {
	return 2 + 2 + w.Value.EncodedSize()
}

func (w *WriteTagBody) Encode(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, w.Value.TypeCode)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(w.Value.Elements))
	return w.Value.Encode(buf)
}

func (w *WriteTagBody) ResponseSize(buffered []byte) (int, bool) { return len(buffered), true }

func (w *WriteTagBody) Decode(data []byte) error { return nil }
