package eip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/enip"
)

// Common Packet Format item type IDs (ODVA v1.4).
const (
	CPFNullAddressID      uint16 = 0x0000
	CPFUnconnectedDataID  uint16 = 0x00B2
	CPFListServicesRespID uint16 = 0x0100
)

// Item is one entry of a Common Packet Format item list.
type Item struct {
	TypeID uint16
	Data   []byte
}

// EncodeItems appends a CPF item count followed by each item's
// type/length/data onto buf.
func EncodeItems(buf []byte, items []Item) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(items)))
	for _, it := range items {
		buf = binary.LittleEndian.AppendUint16(buf, it.TypeID)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(it.Data)))
		buf = append(buf, it.Data...)
	}
	return buf
}

// ParseItems parses a CPF item list from data, returning the items and
// the number of bytes consumed.
func ParseItems(data []byte) ([]Item, int, error) {
	if len(data) < 2 {
		return nil, 0, enip.New(enip.KindFraming, "CPF item list truncated: have %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint16(data[0:2])
	off := 2

	items := make([]Item, 0, count)
	for i := uint16(0); i < count; i++ {
		if len(data) < off+4 {
			return nil, 0, enip.New(enip.KindFraming, "CPF item %d header truncated", i)
		}
		typeID := binary.LittleEndian.Uint16(data[off : off+2])
		length := binary.LittleEndian.Uint16(data[off+2 : off+4])
		off += 4
		if len(data) < off+int(length) {
			return nil, 0, enip.New(enip.KindFraming, "CPF item %d data truncated: need %d bytes", i, length)
		}
		items = append(items, Item{TypeID: typeID, Data: data[off : off+int(length)]})
		off += int(length)
	}
	return items, off, nil
}
