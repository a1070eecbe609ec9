package cip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/eip"
	"github.com/renej-github/etherip/enip"
)

// MessageRouter wraps a CIP service request to a path with the reply
// envelope's service/status/extended-status framing (spec.md §4.4).
type MessageRouter struct {
	Service byte
	Path    Path

	// response fields
	Status   byte
	Extended []uint16

	Body Layer
}

func (m *MessageRouter) body() Layer {
	if m.Body == nil {
		return eip.NoBody{}
	}
	return m.Body
}

func (m *MessageRouter) RequestSize() int {
	return 2 + len(m.Path) + m.body().RequestSize()
}

func (m *MessageRouter) Encode(buf []byte) []byte {
	buf = append(buf, m.Service, m.Path.WordLen())
	buf = append(buf, m.Path...)
	return m.body().Encode(buf)
}

// ResponseSize needs the extended-status word count (byte 3) to know the
// full frame size, so it reports not-ready until 4 bytes are buffered.
func (m *MessageRouter) ResponseSize(buffered []byte) (int, bool) {
	if len(buffered) < 4 {
		return 0, false
	}
	extWords := int(buffered[3])
	headerLen := 4 + extWords*2
	if len(buffered) < headerLen {
		return 0, false
	}
	bodySize, ok := m.body().ResponseSize(buffered[headerLen:])
	if !ok {
		return 0, false
	}
	return headerLen + bodySize, true
}

func (m *MessageRouter) Decode(data []byte) error {
	if len(data) < 4 {
		return enip.New(enip.KindFraming, "MessageRouter reply header truncated: have %d bytes", len(data))
	}

	service := data[0]
	// data[1] is reserved
	status := data[2]
	extWords := int(data[3])
	headerLen := 4 + extWords*2
	if len(data) < headerLen {
		return enip.New(enip.KindFraming, "MessageRouter extended status truncated")
	}

	if service != m.Service|0x80 {
		return enip.New(enip.KindFraming, "MessageRouter reply service 0x%02X does not match request service 0x%02X|0x80", service, m.Service)
	}

	ext := make([]uint16, extWords)
	for i := 0; i < extWords; i++ {
		ext[i] = binary.LittleEndian.Uint16(data[4+i*2 : 6+i*2])
	}
	m.Status = status
	m.Extended = ext

	// A general status of StatusEmbeddedError on a CIP_MultiRequest
	// reply means "at least one sub-request failed" but the outer body
	// (the sub-response list) is still present and must be decoded so
	// the per-sub-request statuses are visible; every other non-zero
	// status means there is no usable body to decode.
	if status != 0 && status != StatusEmbeddedError {
		return statusError(m.Service, status, ext)
	}

	if err := m.body().Decode(data[headerLen:]); err != nil {
		return err
	}
	if status == StatusEmbeddedError {
		return statusError(m.Service, status, ext)
	}
	return nil
}
