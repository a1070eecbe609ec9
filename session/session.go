// Package session implements the connect handshake and tag-level
// read/write operations from spec.md §4.7, composing the eip and cip
// packages into the stack shown in spec.md §2:
//
//	Encapsulation(session)
//	 └─ SendRRData
//	     └─ UnconnectedSend(slot)
//	         └─ MessageRouter(service, path)
//	             └─ ReadTag / WriteTag / MultiRequest / GetAttributeSingle
package session

import (
	"time"

	"github.com/renej-github/etherip/cip"
	"github.com/renej-github/etherip/eip"
	"github.com/renej-github/etherip/enip"
	"github.com/renej-github/etherip/logging"
)

// options configure Open; see Option.
type options struct {
	port       uint16
	timeout    time.Duration
	bufferSize int
}

// Option configures Open. Defaults match spec.md §6: port 0xAF12,
// 2000ms timeout, 600-byte buffer.
type Option func(*options)

// WithPort overrides the TCP port (default 0xAF12).
func WithPort(port uint16) Option {
	return func(o *options) { o.port = port }
}

// WithTimeout overrides the per-call I/O deadline (default 2s).
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithBufferSize overrides the send/receive buffer size bound in bytes
// (default 600).
func WithBufferSize(n int) Option {
	return func(o *options) { o.bufferSize = n }
}

// DeviceInfo is the controller identity captured during Open, decoded
// from CIP Identity object attributes 1, 2, 4, 6 and 7.
type DeviceInfo struct {
	Vendor     uint16
	DeviceType uint16
	Revision   uint16
	Serial     uint32
	Name       string
}

// TagResult is one element of a ReadMany result: the requested tag, its
// decoded value, and a per-tag error so a partial batch failure is
// visible tag-by-tag (spec.md Open Question (a)).
type TagResult struct {
	Tag   string
	Value *cip.Value
	Err   error
}

// Session is the facade spec.md §4.7 describes: a single TCP connection,
// a negotiated session handle and a backplane slot, exposing tag-level
// read/write. It is not safe for concurrent Execute-driven calls
// (spec.md §5).
type Session struct {
	conn    *eip.Conn
	session uint32
	slot    byte
	info    DeviceInfo
	closed  bool
}

// Open connects to address:port, runs ListServices and RegisterSession,
// then reads the controller's Identity attributes (spec.md §4.7).
func Open(address string, slot byte, opts ...Option) (*Session, error) {
	cfg := options{port: eip.DefaultPort, timeout: 2 * time.Second, bufferSize: 600}
	for _, opt := range opts {
		opt(&cfg)
	}

	logging.Connect("session", address)
	transport, err := eip.DialTCP(address, cfg.port, cfg.timeout)
	if err != nil {
		logging.ConnectError("session", address, err)
		return nil, err
	}

	s := &Session{
		conn: eip.NewConn(transport, cfg.timeout, cfg.bufferSize),
		slot: slot,
	}

	if err := s.listServices(); err != nil {
		transport.Close()
		logging.ConnectError("session", address, err)
		return nil, err
	}
	if err := s.registerSession(); err != nil {
		transport.Close()
		logging.ConnectError("session", address, err)
		return nil, err
	}
	if err := s.readIdentity(); err != nil {
		s.Close()
		logging.ConnectError("session", address, err)
		return nil, err
	}

	logging.ConnectSuccess("session", address, s.info.Name)
	return s, nil
}

func (s *Session) listServices() error {
	encap := &eip.Encapsulation{Command: eip.CommandListServices, Body: &eip.ListServicesBody{}}
	return s.conn.Execute(encap)
}

func (s *Session) registerSession() error {
	encap := &eip.Encapsulation{Command: eip.CommandRegisterSession, Body: &eip.RegisterSessionBody{}}
	if err := s.conn.Execute(encap); err != nil {
		return err
	}
	if encap.Session == 0 {
		return enip.New(enip.KindFraming, "RegisterSession returned session handle 0")
	}
	s.session = encap.Session
	return nil
}

func (s *Session) readIdentity() error {
	readAttr := func(attr byte, decoder cip.AttrDecoder) (interface{}, error) {
		path, _ := cip.NewPath().Class(cip.ClassIdentity).Instance(1).Attribute(attr).Build()
		body := &cip.GetAttributeSingleBody{Decoder: decoder}
		mr := &cip.MessageRouter{Service: cip.SvcGetAttributeSingle, Path: path, Body: body}
		if err := s.executeRouted(mr); err != nil {
			return nil, err
		}
		return body.Value, nil
	}

	vendor, err := readAttr(1, cip.DecodeUint16)
	if err != nil {
		return err
	}
	deviceType, err := readAttr(2, cip.DecodeUint16)
	if err != nil {
		return err
	}
	revision, err := readAttr(4, cip.DecodeUint16)
	if err != nil {
		return err
	}
	serial, err := readAttr(6, cip.DecodeUint32)
	if err != nil {
		return err
	}
	name, err := readAttr(7, cip.DecodeShortString)
	if err != nil {
		return err
	}

	s.info = DeviceInfo{
		Vendor:     vendor.(uint16),
		DeviceType: deviceType.(uint16),
		Revision:   revision.(uint16),
		Serial:     serial.(uint32),
		Name:       name.(string),
	}
	return nil
}

// DeviceInfo returns the controller identity captured during Open.
func (s *Session) DeviceInfo() DeviceInfo {
	return s.info
}

// executeRouted wraps embedded in UnconnectedSend/SendRRData/Encapsulation
// using this session's handle and slot, and runs one round trip.
func (s *Session) executeRouted(embedded eip.Layer) error {
	if s == nil || s.closed {
		return enip.ErrNotConnected
	}
	var ctx [8]byte
	return s.executeRoutedCtx(embedded, ctx)
}

func (s *Session) executeRoutedCtx(embedded eip.Layer, ctx [8]byte) error {
	encap := &eip.Encapsulation{
		Command: eip.CommandSendRRData,
		Session: s.session,
		Context: ctx,
		Body: &cip.SendRRData{
			Body: &cip.UnconnectedSend{Slot: s.slot, Embedded: embedded},
		},
	}
	return s.conn.Execute(encap)
}

// Read reads elements consecutive elements of tag, correlating the
// request with ctx (spec.md §4.7).
func (s *Session) Read(tag string, elements int, ctx [8]byte) (*cip.Value, error) {
	if s == nil || s.closed {
		return nil, enip.ErrNotConnected
	}
	if elements < 1 {
		return nil, enip.New(enip.KindArgument, "elements must be >= 1, got %d", elements)
	}
	path, err := cip.NewPath().Symbol(tag).Build()
	if err != nil {
		return nil, err
	}
	body := &cip.ReadTagBody{Elements: uint16(elements)}
	mr := &cip.MessageRouter{Service: cip.SvcReadTag, Path: path, Body: body}
	if err := s.executeRoutedCtx(mr, ctx); err != nil {
		return nil, err
	}
	return body.Value()
}

// Write writes v to tag, correlating the request with ctx.
func (s *Session) Write(tag string, v *cip.Value, ctx [8]byte) error {
	if s == nil || s.closed {
		return enip.ErrNotConnected
	}
	path, err := cip.NewPath().Symbol(tag).Build()
	if err != nil {
		return err
	}
	mr := &cip.MessageRouter{Service: cip.SvcWriteTag, Path: path, Body: &cip.WriteTagBody{Value: v}}
	return s.executeRoutedCtx(mr, ctx)
}

// ReadMany batches a single-element read of every tag into one
// CIP_MultiRequest round trip. Per-tag failures are reported in the
// corresponding TagResult rather than failing the whole call; the
// returned error is non-nil only when the outer request could not be
// decoded at all (spec.md Open Question (a)).
func (s *Session) ReadMany(tags []string) ([]TagResult, error) {
	if s == nil || s.closed {
		return nil, enip.ErrNotConnected
	}
	outer, err := cip.NewReadManyRequest(tags)
	if err != nil {
		return nil, err
	}

	execErr := s.executeRouted(outer)
	multi, ok := outer.Body.(*cip.MultiRequestBody)
	if !ok || multi.Errors == nil {
		if execErr != nil {
			return nil, execErr
		}
		return nil, enip.New(enip.KindFraming, "CIP_MultiRequest reply body was not decoded")
	}

	results := make([]TagResult, len(tags))
	for i, tag := range tags {
		results[i] = TagResult{Tag: tag}
		if multi.Errors[i] != nil {
			results[i].Err = multi.Errors[i]
			continue
		}
		rtb := multi.Requests[i].Body.(*cip.ReadTagBody)
		v, verr := rtb.Value()
		results[i].Value = v
		results[i].Err = verr
	}
	return results, nil
}

// WriteMany batches a single-element write of every tag/value pair into
// one CIP_MultiRequest round trip. tags and values must be equal length.
// Per spec.md Open Question (a), a partial-batch failure is decoded
// sub-request by sub-request; the returned error names every tag whose
// write failed rather than only reporting the outer embedded-error
// status.
func (s *Session) WriteMany(tags []string, values []*cip.Value) error {
	if s == nil || s.closed {
		return enip.ErrNotConnected
	}
	outer, err := cip.NewWriteManyRequest(tags, values)
	if err != nil {
		return err
	}

	execErr := s.executeRouted(outer)
	multi, ok := outer.Body.(*cip.MultiRequestBody)
	if !ok || multi.Errors == nil {
		return execErr
	}

	var failed []string
	for i, tag := range tags {
		if multi.Errors[i] != nil {
			failed = append(failed, tag)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return enip.New(enip.KindProtocolStatus, "write_many: %d of %d tags failed: %v", len(failed), len(tags), failed)
}

// Close unregisters the session (best effort: a single write, no read,
// per spec.md §5) and closes the socket. Idempotent.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	encap := &eip.Encapsulation{Command: eip.CommandUnRegisterSession, Session: s.session, Body: eip.UnRegisterSessionBody{}}
	if err := s.conn.Write(encap); err != nil {
		logging.Error("session", "UnregisterSession", err)
	}
	logging.Disconnect("session", "", "close")
	return s.conn.Close()
}
