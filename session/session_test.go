package session

import (
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/renej-github/etherip/cip"
	"github.com/renej-github/etherip/eip"
	"github.com/renej-github/etherip/enip"
)

// fakePLC is a minimal, test-only EtherNet/IP server: it speaks just
// enough of the wire format to drive Session end to end over a
// net.Pipe, without the real client code that is under test.
type fakePLC struct {
	conn       net.Conn
	session    uint32
	identity   map[byte][]byte // CIP Identity attribute id -> encoded value bytes
	tagReplies map[string][]byte // tag name -> ReadTag reply body (type code + raw)

	lastWrite []byte // last WriteTag request body seen, for byte-exact assertions
}

func newFakePLC(conn net.Conn) *fakePLC {
	return &fakePLC{
		conn:    conn,
		session: 0xCAFEBABE,
		identity: map[byte][]byte{
			1: {0x01, 0x00},             // vendor
			2: {0x0E, 0x00},             // device type
			4: {0x21, 0x00},             // revision
			6: {0x78, 0x56, 0x34, 0x12}, // serial
			7: append([]byte{5}, "PLC-1"...),
		},
		tagReplies: map[string][]byte{},
	}
}

func readFrame(conn net.Conn) ([]byte, error) {
	data := make([]byte, 0, 256)
	tmp := make([]byte, 512)
	for len(data) < 4 {
		n, err := conn.Read(tmp)
		if n > 0 {
			data = append(data, tmp[:n]...)
		}
		if err != nil {
			return nil, err
		}
	}
	total := 24 + int(binary.LittleEndian.Uint16(data[2:4]))
	for len(data) < total {
		n, err := conn.Read(tmp)
		if n > 0 {
			data = append(data, tmp[:n]...)
		}
		if err != nil {
			return nil, err
		}
	}
	return data[:total], nil
}

func encapFrame(command uint16, session uint32, ctx [8]byte, body []byte) []byte {
	buf := make([]byte, 0, 24+len(body))
	buf = binary.LittleEndian.AppendUint16(buf, command)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(body)))
	buf = binary.LittleEndian.AppendUint32(buf, session)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = append(buf, ctx[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	return append(buf, body...)
}

func decodeSymbol(path []byte) string {
	if len(path) < 2 || path[0] != 0x91 {
		return ""
	}
	n := int(path[1])
	if len(path) < 2+n {
		return ""
	}
	return string(path[2 : 2+n])
}

// leafReply builds a MessageRouter reply envelope: service|0x80, reserved,
// status, 0 extended-status words, then the leaf body bytes.
func leafReply(service byte, status byte, body []byte) []byte {
	return append([]byte{service | 0x80, 0x00, status, 0x00}, body...)
}

// run services one request/response cycle per call; the caller loops it.
func (p *fakePLC) run(t *testing.T, frame []byte) []byte {
	command := binary.LittleEndian.Uint16(frame[0:2])
	var ctx [8]byte
	copy(ctx[:], frame[12:20])
	body := frame[24:]

	switch command {
	case eip.CommandListServices:
		items := eip.EncodeItems(nil, []eip.Item{{
			TypeID: eip.CPFListServicesRespID,
			Data:   append([]byte{0x01, 0x00, 0x01, 0x00, 0x00, 0x01}, "Communications\x00"...),
		}})
		return encapFrame(command, 0, ctx, items)

	case eip.CommandRegisterSession:
		_ = body
		replyBody := []byte{0x01, 0x00, 0x00, 0x00}
		return encapFrame(command, p.session, ctx, replyBody)

	case eip.CommandUnRegisterSession:
		return nil

	case eip.CommandSendRRData:
		return encapFrame(command, p.session, ctx, p.handleSendRRData(t, body))

	default:
		t.Fatalf("fakePLC: unexpected command 0x%04X", command)
		return nil
	}
}

func (p *fakePLC) handleSendRRData(t *testing.T, body []byte) []byte {
	items, _, err := eip.ParseItems(body[6:])
	if err != nil {
		t.Fatalf("fakePLC: parse CPF items: %v", err)
	}
	var unc []byte
	for _, it := range items {
		if it.TypeID == eip.CPFUnconnectedDataID {
			unc = it.Data
		}
	}
	if unc == nil {
		t.Fatal("fakePLC: no unconnected data item")
	}

	pathLen := int(unc[1]) * 2
	off := 2 + pathLen
	// priority, timeout ticks
	off += 2
	embLen := int(binary.LittleEndian.Uint16(unc[off : off+2]))
	off += 2
	embedded := unc[off : off+embLen]

	embReply := p.handleMessageRouter(t, embedded)
	uReply := append([]byte{cip.SvcUnconnectedSend | 0x80, 0x00, 0x00, 0x00}, embReply...)

	replyBody := make([]byte, 0, 6+len(uReply)+16)
	replyBody = append(replyBody, 0, 0, 0, 0, 0, 0) // interface handle + timeout
	return eip.EncodeItems(replyBody, []eip.Item{
		{TypeID: eip.CPFNullAddressID, Data: nil},
		{TypeID: eip.CPFUnconnectedDataID, Data: uReply},
	})
}

func (p *fakePLC) handleMessageRouter(t *testing.T, req []byte) []byte {
	service := req[0]
	pathLen := int(req[1]) * 2
	path := req[2 : 2+pathLen]
	sub := req[2+pathLen:]

	switch service {
	case cip.SvcGetAttributeSingle:
		attr := path[len(path)-1]
		v, ok := p.identity[attr]
		if !ok {
			return leafReply(service, cip.StatusAttrNotSupported, nil)
		}
		return leafReply(service, cip.StatusSuccess, v)

	case cip.SvcReadTag:
		tag := decodeSymbol(path)
		v, ok := p.tagReplies[tag]
		if !ok {
			return leafReply(service, cip.StatusPathUnknown, nil)
		}
		return leafReply(service, cip.StatusSuccess, v)

	case cip.SvcWriteTag:
		p.lastWrite = append([]byte(nil), sub...)
		return leafReply(service, cip.StatusSuccess, nil)

	case cip.SvcMultipleServicePacket:
		return p.handleMultiRequest(t, sub)

	default:
		t.Fatalf("fakePLC: unexpected service 0x%02X", service)
		return nil
	}
}

func (p *fakePLC) handleMultiRequest(t *testing.T, body []byte) []byte {
	count := int(binary.LittleEndian.Uint16(body[0:2]))
	offsets := make([]int, count)
	for i := 0; i < count; i++ {
		offsets[i] = int(binary.LittleEndian.Uint16(body[2+i*2 : 4+i*2]))
	}

	replies := make([][]byte, count)
	anyFailed := false
	for i := 0; i < count; i++ {
		end := len(body)
		if i+1 < count {
			end = offsets[i+1]
		}
		sub := body[offsets[i]:end]
		r := p.handleMessageRouter(t, sub)
		if r[2] != cip.StatusSuccess {
			anyFailed = true
		}
		replies[i] = r
	}

	headerLen := 2 + count*2
	subOffsets := make([]uint16, count)
	off := headerLen
	for i, r := range replies {
		subOffsets[i] = uint16(off)
		off += len(r)
	}
	out := make([]byte, 0, off)
	out = binary.LittleEndian.AppendUint16(out, uint16(count))
	for _, o := range subOffsets {
		out = binary.LittleEndian.AppendUint16(out, o)
	}
	for _, r := range replies {
		out = append(out, r...)
	}

	status := cip.StatusSuccess
	if anyFailed {
		status = cip.StatusEmbeddedError
	}
	return leafReply(cip.SvcMultipleServicePacket, status, out)
}

// serve runs the fake PLC loop until the client closes its end.
func (p *fakePLC) serve(t *testing.T) {
	for {
		frame, err := readFrame(p.conn)
		if err != nil {
			return
		}
		command := binary.LittleEndian.Uint16(frame[0:2])
		if command == eip.CommandUnRegisterSession {
			return
		}
		reply := p.run(t, frame)
		if reply == nil {
			continue
		}
		if _, err := p.conn.Write(reply); err != nil {
			return
		}
	}
}

// newTestSession wires a Session directly to one end of a net.Pipe and
// drives the connect handshake against a fakePLC on the other end,
// mirroring what Open does minus the real TCP dial.
func newTestSession(t *testing.T) (*Session, *fakePLC) {
	t.Helper()
	client, server := net.Pipe()
	plc := newFakePLC(server)
	go plc.serve(t)

	s := &Session{conn: eip.NewConn(client, time.Second, 600), slot: 0}
	if err := s.listServices(); err != nil {
		t.Fatalf("listServices: %v", err)
	}
	if err := s.registerSession(); err != nil {
		t.Fatalf("registerSession: %v", err)
	}
	if s.session != plc.session {
		t.Fatalf("session handle = 0x%X, want 0x%X", s.session, plc.session)
	}
	if err := s.readIdentity(); err != nil {
		t.Fatalf("readIdentity: %v", err)
	}
	return s, plc
}

func TestOpenHandshakeCapturesIdentity(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	want := DeviceInfo{Vendor: 1, DeviceType: 14, Revision: 0x21, Serial: 0x12345678, Name: "PLC-1"}
	if got := s.DeviceInfo(); got != want {
		t.Errorf("DeviceInfo() = %+v, want %+v", got, want)
	}
}

func TestReadTagRoundTrip(t *testing.T) {
	s, plc := newTestSession(t)
	defer s.Close()
	plc.tagReplies["Counter"] = []byte{0xC4, 0x00, 0x2A, 0x00, 0x00, 0x00} // DINT 42

	var ctx [8]byte
	v, err := s.Read("Counter", 1, ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	n, err := v.Int(0)
	if err != nil {
		t.Fatalf("Int: %v", err)
	}
	if n != 42 {
		t.Errorf("Counter = %d, want 42", n)
	}
}

func TestReadTagUnknownPath(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	var ctx [8]byte
	if _, err := s.Read("Nope", 1, ctx); err == nil {
		t.Fatal("Read of unknown tag: want error, got nil")
	}
}

func TestWriteTagRoundTrip(t *testing.T) {
	s, plc := newTestSession(t)
	defer s.Close()

	v, err := cip.NewFloat(cip.TypeREAL, 3.5)
	if err != nil {
		t.Fatalf("NewFloat: %v", err)
	}
	var ctx [8]byte
	if err := s.Write("Setpoint", v, ctx); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := []byte{0xCA, 0x00, 0x01, 0x00, 0x00, 0x00, 0x60, 0x40}
	if string(plc.lastWrite) != string(want) {
		t.Errorf("PLC saw write body % X, want % X", plc.lastWrite, want)
	}
}

func TestReadManyRoundTrip(t *testing.T) {
	s, plc := newTestSession(t)
	defer s.Close()
	plc.tagReplies["A"] = []byte{0xC4, 0x00, 0x0A, 0x00, 0x00, 0x00}       // DINT 10
	plc.tagReplies["B"] = []byte{0xCA, 0x00, 0x00, 0x00, 0x20, 0x40}       // REAL 2.5

	results, err := s.ReadMany([]string{"A", "B"})
	if err != nil {
		t.Fatalf("ReadMany: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	n, _ := results[0].Value.Int(0)
	if n != 10 {
		t.Errorf("A = %d, want 10", n)
	}
	f, _ := results[1].Value.Float(0)
	if f != 2.5 {
		t.Errorf("B = %v, want 2.5", f)
	}
}

func TestReadManyPartialFailure(t *testing.T) {
	s, plc := newTestSession(t)
	defer s.Close()
	plc.tagReplies["A"] = []byte{0xC4, 0x00, 0x01, 0x00, 0x00, 0x00} // DINT 1
	// "B" deliberately absent -> StatusPathUnknown

	results, err := s.ReadMany([]string{"A", "B"})
	if err != nil {
		t.Fatalf("ReadMany: %v, want nil (per-tag errors reported instead)", err)
	}
	if results[0].Err != nil {
		t.Errorf("A: unexpected error %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("B: want a path-unknown error, got nil")
	}
}

func TestWriteManyAllSucceed(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	va, _ := cip.NewScalar(cip.TypeDINT, 1)
	vb, _ := cip.NewScalar(cip.TypeDINT, 2)
	if err := s.WriteMany([]string{"A", "B"}, []*cip.Value{va, vb}); err != nil {
		t.Fatalf("WriteMany: %v", err)
	}
}

func TestSessionReadAfterCloseFails(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var ctx [8]byte
	if _, err := s.Read("Counter", 1, ctx); !errors.Is(err, enip.ErrNotConnected) {
		t.Errorf("Read after Close: err = %v, want ErrNotConnected", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v, want nil (idempotent)", err)
	}
}

func TestReadRejectsZeroElements(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()
	var ctx [8]byte
	if _, err := s.Read("Counter", 0, ctx); err == nil {
		t.Fatal("Read with elements=0: want error, got nil")
	}
}
