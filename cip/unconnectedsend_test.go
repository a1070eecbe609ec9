package cip

import "testing"

func TestUnconnectedSendEncode(t *testing.T) {
	embedded := &fakeLayer{reqSize: 2, encoded: []byte{0x01, 0x02}}
	u := &UnconnectedSend{Slot: 0, Embedded: embedded}

	buf := u.Encode(nil)

	want := []byte{SvcUnconnectedSend, connectionManagerPath.WordLen()}
	want = append(want, connectionManagerPath...)
	want = append(want, 0x06, 0x9A) // default priority/timeout ticks
	want = append(want, 0x02, 0x00) // embedded length
	want = append(want, 0x01, 0x02) // embedded bytes, even length so no pad
	want = append(want, 0x01)       // route path word len
	want = append(want, 0x01, 0x00) // port segment 1, slot 0

	if string(buf) != string(want) {
		t.Errorf("Encode() = % X, want % X", buf, want)
	}
	if u.RequestSize() != len(want) {
		t.Errorf("RequestSize() = %d, want %d", u.RequestSize(), len(want))
	}
}

func TestUnconnectedSendEncodeOddLengthPads(t *testing.T) {
	embedded := &fakeLayer{reqSize: 3, encoded: []byte{0x01, 0x02, 0x03}}
	u := &UnconnectedSend{Embedded: embedded}
	buf := u.Encode(nil)

	// After the 2-byte length field the embedded bytes should be padded
	// to an even length before the route path.
	headerLen := 2 + len(connectionManagerPath) + 1 + 1 + 2
	embAndPad := buf[headerLen : len(buf)-3]
	if len(embAndPad) != 4 {
		t.Fatalf("embedded+pad length = %d, want 4 (3 bytes + 1 pad)", len(embAndPad))
	}
	if embAndPad[3] != 0x00 {
		t.Errorf("pad byte = 0x%02X, want 0x00", embAndPad[3])
	}
}

func TestUnconnectedSendDecodeDelegatesToEmbedded(t *testing.T) {
	embedded := &fakeLayer{}
	u := &UnconnectedSend{Embedded: embedded}

	data := []byte{SvcUnconnectedSend | 0x80, 0x00, 0x00, 0x00}
	data = append(data, 0xDE, 0xAD)

	if err := u.Decode(data); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(embedded.decoded) != string([]byte{0xDE, 0xAD}) {
		t.Errorf("embedded decoded %X, want DE AD", embedded.decoded)
	}
}

func TestUnconnectedSendDecodeNonZeroStatus(t *testing.T) {
	u := &UnconnectedSend{Embedded: &fakeLayer{}}
	data := []byte{SvcUnconnectedSend | 0x80, 0x00, StatusPathUnknown, 0x00}
	if err := u.Decode(data); err == nil {
		t.Fatal("Decode with non-zero status: want error, got nil")
	}
}

func TestUnconnectedSendDecodeServiceMismatch(t *testing.T) {
	u := &UnconnectedSend{Embedded: &fakeLayer{}}
	data := []byte{SvcReadTag | 0x80, 0x00, 0x00, 0x00}
	if err := u.Decode(data); err == nil {
		t.Fatal("Decode with mismatched reply service: want error, got nil")
	}
}
