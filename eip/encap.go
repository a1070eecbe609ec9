package eip

import (
	"encoding/binary"

	"github.com/renej-github/etherip/enip"
)

// Encapsulation commands recognized by this client (spec.md §4.4).
const (
	CommandListServices      uint16 = 0x0004
	CommandRegisterSession   uint16 = 0x0065
	CommandUnRegisterSession uint16 = 0x0066
	CommandSendRRData        uint16 = 0x006F
)

const encapHeaderSize = 24

// Encapsulation is the outermost layer: the 24-byte ENIP header wrapping
// an encap-level command body (RegisterSession, UnRegisterSession,
// ListServices, or SendRRData carrying the CIP stack).
type Encapsulation struct {
	Command uint16
	Session uint32  // request: session to use (0 before RegisterSession); response: allocated/echoed handle
	Status  uint32  // response only
	Context [8]byte // caller-supplied, echoed by the PLC
	Options uint32
	Body    Layer
}

func (e *Encapsulation) body() Layer {
	if e.Body == nil {
		return NoBody{}
	}
	return e.Body
}

func (e *Encapsulation) RequestSize() int {
	return encapHeaderSize + e.body().RequestSize()
}

func (e *Encapsulation) Encode(buf []byte) []byte {
	bodyLen := e.body().RequestSize()

	buf = binary.LittleEndian.AppendUint16(buf, e.Command)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(bodyLen))
	buf = binary.LittleEndian.AppendUint32(buf, e.Session)
	buf = binary.LittleEndian.AppendUint32(buf, e.Status)
	buf = append(buf, e.Context[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, e.Options)
	return e.body().Encode(buf)
}

// ResponseSize needs only the first 4 bytes (command, length) to know
// the full frame size: 24 header bytes plus the length field's value.
func (e *Encapsulation) ResponseSize(buffered []byte) (int, bool) {
	if len(buffered) < 4 {
		return 0, false
	}
	bodyLen := binary.LittleEndian.Uint16(buffered[2:4])
	return encapHeaderSize + int(bodyLen), true
}

func (e *Encapsulation) Decode(data []byte) error {
	if len(data) < encapHeaderSize {
		return enip.New(enip.KindFraming, "encapsulation header truncated: have %d bytes, need %d", len(data), encapHeaderSize)
	}

	command := binary.LittleEndian.Uint16(data[0:2])
	bodyLen := binary.LittleEndian.Uint16(data[2:4])
	session := binary.LittleEndian.Uint32(data[4:8])
	status := binary.LittleEndian.Uint32(data[8:12])
	var context [8]byte
	copy(context[:], data[12:20])

	if command != e.Command {
		return enip.New(enip.KindFraming, "reply command 0x%04X does not match request command 0x%04X", command, e.Command)
	}
	if context != e.Context {
		return enip.New(enip.KindFraming, "reply sender_context does not match request")
	}
	if status != 0 {
		return enip.New(enip.KindProtocolStatus, "encapsulation status 0x%08X", status)
	}

	e.Session = session
	e.Status = status
	e.Context = context

	body := data[encapHeaderSize:]
	if len(body) < int(bodyLen) {
		return enip.New(enip.KindFraming, "encapsulation body truncated: have %d bytes, need %d", len(body), bodyLen)
	}
	return e.body().Decode(body[:bodyLen])
}
