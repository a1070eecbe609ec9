package cip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/enip"
)

// UnconnectedSend is CIP service 0x52 on the ConnectionManager object
// (class 0x06, instance 1), used to route an embedded CIP request across
// the backplane to the controller in Slot (spec.md §4.4). Its own
// request/response framing is the standard MessageRouter envelope; on
// success, the response body is exactly the embedded layer's reply
// bytes, so Decode hands off to Embedded directly rather than parsing
// another envelope around it.
type UnconnectedSend struct {
	Slot          byte
	PriorityTicks byte // default 0x06
	TimeoutTicks  byte // default 0x9A
	Embedded      Layer

	Status   byte
	Extended []uint16
}

var connectionManagerPath = Path{
	(0b001&0b111)<<5 | (0<<2) | 0, ClassConnectionMgr, // Class 0x06
	(0b001&0b111)<<5 | (1<<2) | 0, 1, // Instance 1
}

func (u *UnconnectedSend) priority() byte {
	if u.PriorityTicks == 0 {
		return 0x06
	}
	return u.PriorityTicks
}

func (u *UnconnectedSend) timeoutTicks() byte {
	if u.TimeoutTicks == 0 {
		return 0x9A
	}
	return u.TimeoutTicks
}

// embeddedBodyLen returns the embedded message length plus its odd-byte
// pad, matching what Encode writes.
func (u *UnconnectedSend) embeddedBodyLen() (embLen int, pad int) {
	embLen = u.Embedded.RequestSize()
	if embLen%2 != 0 {
		pad = 1
	}
	return
}

func (u *UnconnectedSend) RequestSize() int {
	embLen, pad := u.embeddedBodyLen()
	// service + path_word_len + path
	// + priority + timeout_ticks + embedded_length(u16) + embedded + pad
	// + route_path_word_len + port segment(u8) + slot(u8)
	return 2 + len(connectionManagerPath) + 1 + 1 + 2 + embLen + pad + 1 + 2
}

func (u *UnconnectedSend) Encode(buf []byte) []byte {
	buf = append(buf, SvcUnconnectedSend, connectionManagerPath.WordLen())
	buf = append(buf, connectionManagerPath...)

	embLen, pad := u.embeddedBodyLen()
	buf = append(buf, u.priority(), u.timeoutTicks())
	buf = binary.LittleEndian.AppendUint16(buf, uint16(embLen))
	buf = u.Embedded.Encode(buf)
	if pad == 1 {
		buf = append(buf, 0x00)
	}

	// Route path: port segment 0x01 (backplane), then the slot number.
	routePath := Path{0x01, u.Slot}
	buf = append(buf, routePath.WordLen())
	buf = append(buf, routePath...)
	return buf
}

func (u *UnconnectedSend) ResponseSize(buffered []byte) (int, bool) {
	if len(buffered) < 4 {
		return 0, false
	}
	extWords := int(buffered[3])
	headerLen := 4 + extWords*2
	if len(buffered) < headerLen {
		return 0, false
	}
	bodySize, ok := u.Embedded.ResponseSize(buffered[headerLen:])
	if !ok {
		return 0, false
	}
	return headerLen + bodySize, true
}

func (u *UnconnectedSend) Decode(data []byte) error {
	if len(data) < 4 {
		return enip.New(enip.KindFraming, "UnconnectedSend reply header truncated: have %d bytes", len(data))
	}

	service := data[0]
	status := data[2]
	extWords := int(data[3])
	headerLen := 4 + extWords*2
	if len(data) < headerLen {
		return enip.New(enip.KindFraming, "UnconnectedSend extended status truncated")
	}

	if service != SvcUnconnectedSend|0x80 {
		return enip.New(enip.KindFraming, "UnconnectedSend reply service 0x%02X does not match request service 0x%02X|0x80", service, SvcUnconnectedSend)
	}

	ext := make([]uint16, extWords)
	for i := 0; i < extWords; i++ {
		ext[i] = binary.LittleEndian.Uint16(data[4+i*2 : 6+i*2])
	}
	u.Status = status
	u.Extended = ext

	if status != 0 {
		return statusError(SvcUnconnectedSend, status, ext)
	}

	return u.Embedded.Decode(data[headerLen:])
}
