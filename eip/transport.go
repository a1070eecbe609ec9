package eip

import (
	"net"
	"strconv"
	"time"

	"github.com/renej-github/etherip/enip"
)

// DefaultPort is the well-known EtherNet/IP TCP port, 0xAF12.
const DefaultPort uint16 = 0xAF12

// Transport is the socket collaborator a Conn drives. It is deliberately
// narrow — send_bytes/recv_bytes/close, per spec.md §1 — so it can be
// faked with net.Pipe in tests without standing up a real listener.
type Transport interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	Close() error
}

// TCPTransport is the only production Transport: a plain TCP socket to
// the controller's Ethernet module.
type TCPTransport struct {
	conn net.Conn
}

// DialTCP opens a TCP connection to host:port. port defaults to
// DefaultPort when zero.
func DialTCP(host string, port uint16, dialTimeout time.Duration) (*TCPTransport, error) {
	if port == 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, enip.Wrap(enip.KindIO, err, "dial %s", addr)
	}
	return &TCPTransport{conn: conn}, nil
}

func (t *TCPTransport) Write(b []byte) (int, error) { return t.conn.Write(b) }
func (t *TCPTransport) Read(b []byte) (int, error) { return t.conn.Read(b) }
func (t *TCPTransport) SetWriteDeadline(tm time.Time) error { return t.conn.SetWriteDeadline(tm) }
func (t *TCPTransport) SetReadDeadline(tm time.Time) error { return t.conn.SetReadDeadline(tm) }
func (t *TCPTransport) Close() error { return t.conn.Close() }
