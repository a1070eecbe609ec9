// Package eip implements the EtherNet/IP encapsulation layer: the
// 24-byte command header, the Common Packet Format item list, the
// encapsulation-level leaf commands (RegisterSession, UnRegisterSession,
// ListServices) and the bounded TCP transport that drives them.
//
// CIP itself — SendRRData, UnconnectedSend, MessageRouter and the tag
// service bodies — is built on top of this package in cip.
package eip

// Layer is the uniform protocol-layer contract every frame in the stack
// implements: request_size/encode on the way out, response_size/decode
// on the way back in. A container layer holds one child Layer and
// delegates; a leaf layer implements the body directly. A single value
// carries both the outgoing request fields (set by the caller before
// Encode) and the parsed response fields (set by Decode), matching the
// wire's symmetric request/response framing.
type Layer interface {
	// RequestSize returns the total number of bytes Encode appends for
	// this layer, its child's bytes included; it is not the size of this
	// layer's own header alone.
	RequestSize() int

	// Encode writes this layer's header into buf, then invokes the
	// child's Encode (if any).
	Encode(buf []byte) []byte

	// ResponseSize inspects the bytes already buffered and reports the
	// total frame size once it is known. ok is false when not enough
	// bytes have arrived yet to compute it.
	ResponseSize(buffered []byte) (size int, ok bool)

	// Decode consumes this layer's header from data (exactly
	// ResponseSize bytes) and invokes the child's Decode with the
	// remainder.
	Decode(data []byte) error
}

// NoBody is the default child Layer: zero size, no-op encode/decode.
// Encapsulation and cip.MessageRouter substitute it for an unset Body.
// cip.SendRRData and cip.UnconnectedSend have no such default and need
// a non-nil child; no leaf layer in this module embeds NoBody.
type NoBody struct{}

func (NoBody) RequestSize() int { return 0 }
func (NoBody) Encode(buf []byte) []byte { return buf }
func (NoBody) ResponseSize(buffered []byte) (int, bool) { return 0, true }
func (NoBody) Decode(data []byte) error { return nil }
