package eip

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/renej-github/etherip/enip"
	"github.com/renej-github/etherip/logging"
)

const defaultBufferSize = 600

// Conn owns the single TCP transport for one session and the buffer size
// bound, and drives the write/read/execute cycle from spec.md §4.6. It
// keeps no buffer between calls: each Write and each Read allocates a
// fresh one of at most bufSize bytes. It is not safe for concurrent
// Execute calls.
type Conn struct {
	transport Transport
	timeout   time.Duration
	bufSize   int
}

// NewConn wraps transport with the bounded buffer/deadline behavior the
// protocol stack needs. bufSize of 0 uses the 600-byte default, which
// spec.md notes is sufficient for all non-fragmented CIP requests used
// by this client.
func NewConn(transport Transport, timeout time.Duration, bufSize int) *Conn {
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	return &Conn{transport: transport, timeout: timeout, bufSize: bufSize}
}

// Write encodes layer into the bounded buffer and drains it to the
// socket, retrying short writes until empty or the deadline passes. An
// oversize request fails loudly rather than silently truncating or
// growing the buffer (spec.md Open Question (c)).
func (c *Conn) Write(layer Layer) error {
	size := layer.RequestSize()
	if size > c.bufSize {
		return enip.New(enip.KindArgument, "oversize request: %d bytes exceeds %d-byte buffer", size, c.bufSize)
	}

	buf := make([]byte, 0, size)
	buf = layer.Encode(buf)

	if err := c.transport.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return enip.Wrap(enip.KindIO, err, "set write deadline")
	}
	defer c.transport.SetWriteDeadline(time.Time{})

	logging.TX("eip", buf)

	for len(buf) > 0 {
		n, err := c.transport.Write(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return enip.ErrTimeout
			}
			return enip.Wrap(enip.KindIO, err, "write")
		}
		buf = buf[n:]
	}
	return nil
}

// Read clears the buffer, then repeatedly reads from the transport until
// layer.ResponseSize reports enough bytes are present, and decodes.
func (c *Conn) Read(layer Layer) error {
	if err := c.transport.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return enip.Wrap(enip.KindIO, err, "set read deadline")
	}
	defer c.transport.SetReadDeadline(time.Time{})

	buf := make([]byte, 0, c.bufSize)
	chunk := make([]byte, c.bufSize)

	for {
		size, ok := layer.ResponseSize(buf)
		if ok && len(buf) >= size {
			break
		}
		if len(buf) >= c.bufSize {
			return enip.New(enip.KindArgument, "oversize response: exceeds %d-byte buffer", c.bufSize)
		}

		n, err := c.transport.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return enip.ErrTimeout
			}
			if errors.Is(err, io.EOF) {
				return enip.New(enip.KindIO, "connection closed by peer after %d bytes", len(buf))
			}
			return enip.Wrap(enip.KindIO, err, "read")
		}
	}

	logging.RX("eip", buf)

	size, _ := layer.ResponseSize(buf)
	return layer.Decode(buf[:size])
}

// Execute is Write followed by Read, the single round-trip primitive
// every layer in this module is driven through.
func (c *Conn) Execute(layer Layer) error {
	if err := c.Write(layer); err != nil {
		return err
	}
	return c.Read(layer)
}

// Close closes the underlying transport.
func (c *Conn) Close() error {
	return c.transport.Close()
}
