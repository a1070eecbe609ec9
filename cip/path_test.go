package cip

import "testing"

func TestPathClassInstanceAttribute(t *testing.T) {
	p, err := NewPath().Class(0x01).Instance(1).Attribute(7).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []byte{0x20, 0x01, 0x24, 0x01, 0x30, 0x07}
	if len(p) != len(want) {
		t.Fatalf("path = % X, want % X", []byte(p), want)
	}
	for i := range want {
		if p[i] != want[i] {
			t.Errorf("path[%d] = 0x%02X, want 0x%02X", i, p[i], want[i])
		}
	}
	if p.WordLen() != byte(len(p)/2) {
		t.Errorf("WordLen() = %d, want %d", p.WordLen(), len(p)/2)
	}
}

func TestPathSimpleSymbol(t *testing.T) {
	p, err := NewPath().Symbol("Counter").Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []byte{0x91, 0x07, 'C', 'o', 'u', 'n', 't', 'e', 'r', 0x00}
	if string(p) != string(want) {
		t.Errorf("path = % X, want % X", []byte(p), want)
	}
}

func TestPathDottedAndIndexed(t *testing.T) {
	p, err := NewPath().Symbol("Program:MainProgram.Array[5].Member").Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// "Program:MainProgram" is one symbolic segment (':' is not a separator)
	if len(p) == 0 || p[0] != 0x91 {
		t.Fatalf("path does not start with a symbolic segment: % X", []byte(p))
	}
	nameLen := int(p[1])
	name := string(p[2 : 2+nameLen])
	if name != "Program:MainProgram" {
		t.Errorf("first segment name = %q, want Program:MainProgram", name)
	}
}

func TestSplitTagPathPreservesColon(t *testing.T) {
	parts := splitTagPath("Program:MainProgram.Tag")
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2: %+v", len(parts), parts)
	}
	if parts[0].name != "Program:MainProgram" {
		t.Errorf("parts[0].name = %q, want Program:MainProgram", parts[0].name)
	}
	if parts[1].name != "Tag" {
		t.Errorf("parts[1].name = %q, want Tag", parts[1].name)
	}
}

func TestSplitTagPathIndex(t *testing.T) {
	parts := splitTagPath("Array[12]")
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2: %+v", len(parts), parts)
	}
	if parts[0].name != "Array" {
		t.Errorf("parts[0].name = %q, want Array", parts[0].name)
	}
	if !parts[1].isIndex || parts[1].index != 12 {
		t.Errorf("parts[1] = %+v, want isIndex=true index=12", parts[1])
	}
}

func TestElementSegmentWidthSelection(t *testing.T) {
	small, err := elementSegment(5)
	if err != nil || len(small) != 2 || small[0] != 0x28 {
		t.Errorf("elementSegment(5) = % X, err %v, want 1-byte form", small, err)
	}

	mid, err := elementSegment(300)
	if err != nil || len(mid) != 4 || mid[0] != 0x29 {
		t.Errorf("elementSegment(300) = % X, err %v, want 2-byte padded form", mid, err)
	}

	big, err := elementSegment(1 << 20)
	if err != nil || len(big) != 6 || big[0] != 0x2A {
		t.Errorf("elementSegment(2^20) = % X, err %v, want 4-byte padded form", big, err)
	}
}

func TestPathRejectsOverlongSymbolSegment(t *testing.T) {
	longName := make([]byte, 256)
	for i := range longName {
		longName[i] = 'A'
	}
	if _, err := NewPath().Symbol(string(longName)).Build(); err == nil {
		t.Fatal("Symbol with a 256-byte segment name: want error, got nil")
	}
}

func TestPathBuildPadsToEvenLength(t *testing.T) {
	p, err := NewPath().Class(0x06).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p)%2 != 0 {
		t.Errorf("path length %d is not even", len(p))
	}
}
