package eip

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/renej-github/etherip/enip"
)

// RegisterSessionBody is the body of the RegisterSession (0x0065)
// encapsulation command. ProtocolVersion and OptionsFlags are echoed by
// the PLC; the allocated session handle comes back in the encapsulation
// header, not the body.
type RegisterSessionBody struct {
	ProtocolVersion uint16
	OptionsFlags    uint16
}

func (b *RegisterSessionBody) RequestSize() int { return 4 }

func (b *RegisterSessionBody) Encode(buf []byte) []byte {
	if b.ProtocolVersion == 0 {
		b.ProtocolVersion = 1
	}
	buf = binary.LittleEndian.AppendUint16(buf, b.ProtocolVersion)
	buf = binary.LittleEndian.AppendUint16(buf, b.OptionsFlags)
	return buf
}

func (b *RegisterSessionBody) ResponseSize(buffered []byte) (int, bool) { return 4, true }

func (b *RegisterSessionBody) Decode(data []byte) error {
	if len(data) < 4 {
		return enip.New(enip.KindFraming, "RegisterSession reply body truncated: have %d bytes", len(data))
	}
	b.ProtocolVersion = binary.LittleEndian.Uint16(data[0:2])
	b.OptionsFlags = binary.LittleEndian.Uint16(data[2:4])
	return nil
}

// UnRegisterSessionBody carries no data in either direction. The PLC may
// close the socket immediately after receiving it; callers must not
// attempt to read a reply.
type UnRegisterSessionBody struct{}

func (UnRegisterSessionBody) RequestSize() int { return 0 }
func (UnRegisterSessionBody) Encode(buf []byte) []byte { return buf }
func (UnRegisterSessionBody) ResponseSize(buffered []byte) (int, bool) { return 0, true }
func (UnRegisterSessionBody) Decode(data []byte) error { return nil }

// ServiceInfo is one entry of a ListServices reply.
type ServiceInfo struct {
	ServiceID    uint16
	VersionUint  uint16
	CapabilityFl uint16
	Name         string
}

// ListServicesBody is the body of the ListServices (0x0004) command.
// The request body is empty; the response is a CPF item list whose
// items describe the services the target supports. The first service's
// name must begin with "Comm" (case-insensitive) or the device is
// rejected as not speaking EtherNet/IP (spec.md §4.5).
type ListServicesBody struct {
	Services []ServiceInfo
}

func (b *ListServicesBody) RequestSize() int { return 0 }
func (b *ListServicesBody) Encode(buf []byte) []byte { return buf }
func (b *ListServicesBody) ResponseSize(buffered []byte) (int, bool) { return len(buffered), true }

func (b *ListServicesBody) Decode(data []byte) error {
	items, _, err := ParseItems(data)
	if err != nil {
		return err
	}

	b.Services = b.Services[:0]
	for _, it := range items {
		if it.TypeID != CPFListServicesRespID {
			continue
		}
		if len(it.Data) < 6 {
			return enip.New(enip.KindFraming, "ListServices item truncated: have %d bytes", len(it.Data))
		}
		svc := ServiceInfo{
			ServiceID:    binary.LittleEndian.Uint16(it.Data[0:2]),
			VersionUint:  binary.LittleEndian.Uint16(it.Data[2:4]),
			CapabilityFl: binary.LittleEndian.Uint16(it.Data[4:6]),
		}
		name := it.Data[6:]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		svc.Name = string(name)
		b.Services = append(b.Services, svc)
	}

	if len(b.Services) == 0 {
		return enip.ErrUnsupportedService
	}
	if !strings.HasPrefix(strings.ToLower(b.Services[0].Name), "comm") {
		return enip.New(enip.KindUnsupportedService, "target does not advertise an EtherNet/IP communications service (got %q)", b.Services[0].Name)
	}
	return nil
}
