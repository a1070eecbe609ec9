package eip

import (
	"errors"
	"testing"

	"github.com/renej-github/etherip/enip"
)

func TestRegisterSessionBodyDefaultsProtocolVersion(t *testing.T) {
	b := &RegisterSessionBody{}
	buf := b.Encode(nil)
	if buf[0] != 1 || buf[1] != 0 {
		t.Errorf("encoded protocol version = % X, want 01 00", buf[:2])
	}
}

func TestListServicesBodyDecode(t *testing.T) {
	nameBytes := append([]byte("Communications"), 0)
	item := make([]byte, 0, 6+len(nameBytes))
	item = appendU16(item, 0x0000) // service ID
	item = appendU16(item, 1)      // version
	item = appendU16(item, 0x0020) // capability flags
	item = append(item, nameBytes...)

	data := EncodeItems(nil, []Item{{TypeID: CPFListServicesRespID, Data: item}})

	b := &ListServicesBody{}
	if err := b.Decode(data); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(b.Services) != 1 {
		t.Fatalf("got %d services, want 1", len(b.Services))
	}
	if b.Services[0].Name != "Communications" {
		t.Errorf("Name = %q, want Communications", b.Services[0].Name)
	}
}

func TestListServicesBodyRejectsNonCommPrefix(t *testing.T) {
	nameBytes := append([]byte("Bogus"), 0)
	item := make([]byte, 0, 6+len(nameBytes))
	item = appendU16(item, 0)
	item = appendU16(item, 1)
	item = appendU16(item, 0)
	item = append(item, nameBytes...)
	data := EncodeItems(nil, []Item{{TypeID: CPFListServicesRespID, Data: item}})

	b := &ListServicesBody{}
	err := b.Decode(data)
	if err == nil {
		t.Fatal("Decode with non-Comm service name: want error, got nil")
	}
	var enipErr *enip.Error
	if !errors.As(err, &enipErr) || enipErr.Kind != enip.KindUnsupportedService {
		t.Errorf("error = %v, want KindUnsupportedService", err)
	}
}

func TestListServicesBodyRejectsEmptyList(t *testing.T) {
	data := EncodeItems(nil, nil)
	b := &ListServicesBody{}
	if err := b.Decode(data); !errors.Is(err, enip.ErrUnsupportedService) {
		t.Errorf("Decode with no services = %v, want ErrUnsupportedService", err)
	}
}

func appendU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}
