package pow

import (
	"math/big"
	"testing"
)

func TestCompactRoundTrip(t *testing.T) {
	tests := []struct {
		size     uint8
		mantissa uint32
	}{
		{3, 0x000001},
		{4, 0x00ffff},
		{0x1d, 0x00ffff},
		{0x1b, 0x404cb0},
		{29, 0x7fffff},
	}

	for _, test := range tests {
		compact := Encode(test.size, test.mantissa)
		gotSize, gotMantissa := Size(compact), Mantissa(compact)
		if gotSize != test.size || gotMantissa != test.mantissa {
			t.Errorf("Encode/decode round trip: got (%d, %x), want (%d, %x)",
				gotSize, gotMantissa, test.size, test.mantissa)
		}
	}
}

func TestCompactToBig(t *testing.T) {
	target := CompactToBig(MaxProofOfWorkBits)
	want, ok := new(big.Int).SetString("00000000ffff0000000000000000000000000000000000000000000000000000", 16)
	if !ok {
		t.Fatal("failed to parse expected target")
	}
	if target.Cmp(want) != 0 {
		t.Errorf("CompactToBig(0x%x) = %x, want %x", MaxProofOfWorkBits, target, want)
	}
}

func TestBigToCompactRoundTrip(t *testing.T) {
	for _, compact := range []uint32{MaxProofOfWorkBits, 0x1b0404cb, 0x1d00ffff} {
		big := CompactToBig(compact)
		got := BigToCompact(big)
		if got != compact {
			t.Errorf("BigToCompact(CompactToBig(0x%x)) = 0x%x, want 0x%x", compact, got, compact)
		}
	}
}

func TestIsInRange(t *testing.T) {
	if !IsInRange(MaxProofOfWorkBits, MaxProofOfWorkBits) {
		t.Error("MaxProofOfWorkBits should be in range of itself")
	}
	if IsInRange(0x1e00ffff, MaxProofOfWorkBits) {
		t.Error("a larger size than the max should be rejected")
	}
	if IsInRange(0x04000000, MaxProofOfWorkBits) {
		t.Error("a zero mantissa should be rejected")
	}
	if IsInRange(MaxProofOfWorkBits|0x00800000, MaxProofOfWorkBits) {
		t.Error("a set sign bit should be rejected")
	}
}

func TestLessOrEqual(t *testing.T) {
	target := CompactToBig(MaxProofOfWorkBits)

	easy, _ := new(big.Int).SetString("0000000080000000000000000000000000000000000000000000000000000000", 16)
	if !LessOrEqual(easy, target) {
		t.Error("hash below target should satisfy proof of work")
	}

	hard, _ := new(big.Int).SetString("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 16)
	if LessOrEqual(hard, target) {
		t.Error("hash above target should not satisfy proof of work")
	}
}
