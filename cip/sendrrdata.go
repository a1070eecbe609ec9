package cip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/eip"
	"github.com/renej-github/etherip/enip"
)

// SendRRData is the encapsulation command (0x006F) body that carries an
// unconnected CIP message as a Common Packet Format item list: a
// null-address item followed by an unconnected-data item whose payload
// is the embedded layer's bytes (spec.md §4.4).
type SendRRData struct {
	InterfaceHandle uint32 // request: 0
	Timeout         uint16 // request: 0

	Body Layer
}

func (s *SendRRData) RequestSize() int {
	childLen := s.Body.RequestSize()
	// interface_handle(4) + timeout(2) + item_count(2) + null item header(4) + data item header(4) + child
	return 4 + 2 + 2 + 4 + 4 + childLen
}

func (s *SendRRData) Encode(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, s.InterfaceHandle)
	buf = binary.LittleEndian.AppendUint16(buf, s.Timeout)

	childLen := s.Body.RequestSize()
	childBuf := make([]byte, 0, childLen)
	childBuf = s.Body.Encode(childBuf)

	return eip.EncodeItems(buf, []eip.Item{
		{TypeID: eip.CPFNullAddressID, Data: nil},
		{TypeID: eip.CPFUnconnectedDataID, Data: childBuf},
	})
}

// ResponseSize is unconditionally the number of bytes already buffered:
// SendRRData is only ever decoded as Encapsulation's body, and the
// encapsulation header's length field already bounds the frame.
func (s *SendRRData) ResponseSize(buffered []byte) (int, bool) {
	return len(buffered), true
}

func (s *SendRRData) Decode(data []byte) error {
	if len(data) < 6 {
		return enip.New(enip.KindFraming, "SendRRData reply truncated: have %d bytes", len(data))
	}
	s.InterfaceHandle = binary.LittleEndian.Uint32(data[0:4])
	s.Timeout = binary.LittleEndian.Uint16(data[4:6])

	items, _, err := eip.ParseItems(data[6:])
	if err != nil {
		return err
	}

	for _, it := range items {
		if it.TypeID == eip.CPFUnconnectedDataID {
			return s.Body.Decode(it.Data)
		}
	}
	return enip.New(enip.KindFraming, "SendRRData reply has no unconnected data item")
}
