package wire

import (
	"bytes"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	tests := []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000, 0xffffffffffffffff}

	for _, n := range tests {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, n); err != nil {
			t.Fatalf("WriteVarInt(%d) error: %v", n, err)
		}
		if buf.Len() != VarIntSerializeSize(n) {
			t.Errorf("VarIntSerializeSize(%d) = %d, want %d", n, VarIntSerializeSize(n), buf.Len())
		}
		got, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt error: %v", err)
		}
		if got != n {
			t.Errorf("round trip: got %d, want %d", got, n)
		}
	}
}

func TestVarIntAcceptsNonCanonical(t *testing.T) {
	// 0xfd prefix encoding a value (1) that would fit in a single byte.
	buf := bytes.NewBuffer([]byte{0xfd, 0x01, 0x00})
	got, err := ReadVarInt(buf)
	if err != nil {
		t.Fatalf("ReadVarInt error: %v", err)
	}
	if got != 1 {
		t.Errorf("non-canonical decode: got %d, want 1", got)
	}
}

func TestVarIntEmitsCanonical(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarInt(&buf, 1); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 1 {
		t.Errorf("WriteVarInt(1) wrote %d bytes, want canonical 1", buf.Len())
	}
}
