package eip

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/renej-github/etherip/enip"
)

func TestConnExecuteRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		buf := make([]byte, 64)
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		req := buf[:n]
		ctx := req[12:20]

		reply := make([]byte, 0, 24+4)
		reply = append(reply, 0x65, 0x00) // command echoed
		reply = append(reply, 0x04, 0x00) // body length
		reply = append(reply, 0x2A, 0x00, 0x00, 0x00)
		reply = append(reply, 0x00, 0x00, 0x00, 0x00)
		reply = append(reply, ctx...)
		reply = append(reply, 0x00, 0x00, 0x00, 0x00)
		reply = append(reply, 0x01, 0x00, 0x00, 0x00) // RegisterSessionBody body
		server.Write(reply)
	}()

	conn := NewConn(client, time.Second, 0)
	encap := &Encapsulation{Command: CommandRegisterSession, Body: &RegisterSessionBody{}}
	if err := conn.Execute(encap); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if encap.Session != 0x2A {
		t.Errorf("Session = %d, want 42", encap.Session)
	}
}

func TestConnWriteRejectsOversizeRequest(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := NewConn(client, time.Second, 4)
	encap := &Encapsulation{Command: CommandRegisterSession, Body: &RegisterSessionBody{}}
	err := conn.Write(encap)
	if err == nil {
		t.Fatal("Write with a request bigger than the buffer: want error, got nil")
	}
	var enipErr *enip.Error
	if !errors.As(err, &enipErr) || enipErr.Kind != enip.KindArgument {
		t.Errorf("error = %v, want KindArgument", err)
	}
}

func TestConnReadTimesOut(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := NewConn(client, 50*time.Millisecond, 0)
	encap := &Encapsulation{Command: CommandRegisterSession, Body: &RegisterSessionBody{}}

	start := time.Now()
	err := conn.Read(encap)
	elapsed := time.Since(start)

	if !errors.Is(err, enip.ErrTimeout) {
		t.Errorf("Read with no peer data = %v, want ErrTimeout", err)
	}
	if elapsed > time.Second {
		t.Errorf("Read took %v, want close to the 50ms deadline", elapsed)
	}
}

func TestConnReadDetectsOversizeResponse(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		// Feed a never-complete oversize stream: the encapsulation
		// header claims a body far bigger than the buffer.
		header := []byte{0x65, 0x00, 0xFF, 0x7F}
		header = append(header, make([]byte, 20)...)
		server.Write(header)
		server.Write(make([]byte, 32)) // fill the 32-byte buffer below
	}()

	conn := NewConn(client, time.Second, 32)
	encap := &Encapsulation{Command: CommandRegisterSession, Body: &RegisterSessionBody{}}
	err := conn.Read(encap)
	var enipErr *enip.Error
	if !errors.As(err, &enipErr) || enipErr.Kind != enip.KindArgument {
		t.Errorf("error = %v, want KindArgument (oversize response)", err)
	}
}
