package merkle

import (
	"testing"
	"time"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/pow"
	"github.com/spvwallet/walletcore/wire"
)

// mineHeader bumps nonce until the header's hash satisfies its own target,
// so tests can produce a header that passes IsValid's PoW check without a
// captured mainnet test vector.
func mineHeader(h *wire.BlockHeader) {
	target := pow.CompactToBig(h.Bits)
	for nonce := uint32(0); ; nonce++ {
		h.Nonce = nonce
		h.InvalidateCache()
		if pow.LessOrEqual(h.BlockHash().LEUint256(), target) {
			return
		}
	}
}

func TestIsValidAcceptsMinedHeaderWithNoProof(t *testing.T) {
	prev := chainhash.DoubleHashH([]byte("prev"))
	root := chainhash.DoubleHashH([]byte("root"))
	// An easy target so mining converges quickly in a unit test.
	h := wire.NewBlockHeader(1, prev, root, time.Now().UTC(), 0x207fffff, 0)
	mineHeader(h)

	b := &Block{Header: h}
	if err := IsValid(b, time.Now().UTC(), 0x207fffff); err != nil {
		t.Errorf("IsValid() = %v, want nil", err)
	}
}

func TestIsValidRejectsFutureTimestamp(t *testing.T) {
	prev := chainhash.DoubleHashH([]byte("prev"))
	root := chainhash.DoubleHashH([]byte("root"))
	h := wire.NewBlockHeader(1, prev, root, time.Now().Add(3*time.Hour).UTC(), 0x207fffff, 0)
	mineHeader(h)

	b := &Block{Header: h}
	if err := IsValid(b, time.Now().UTC(), 0x207fffff); err == nil {
		t.Error("IsValid() on a header 3h in the future = nil, want an error")
	}
}

func TestIsValidRejectsBadProofRoot(t *testing.T) {
	h1 := chainhash.DoubleHashH([]byte("tx1"))
	wrongRoot := chainhash.DoubleHashH([]byte("not-the-root"))

	prev := chainhash.DoubleHashH([]byte("prev"))
	h := wire.NewBlockHeader(1, prev, wrongRoot, time.Now().UTC(), 0x207fffff, 0)
	mineHeader(h)

	b := &Block{
		Header: h,
		Proof: &PartialMerkleProof{
			TotalTransactions: 1,
			Hashes:            []chainhash.Hash{h1},
			Flags:             []byte{0x01},
		},
	}
	if err := IsValid(b, time.Now().UTC(), 0x207fffff); err == nil {
		t.Error("IsValid() with mismatched root = nil, want an error")
	}
}

func TestVerifyDifficultyTransitionNonBoundary(t *testing.T) {
	prevHeader := wire.NewBlockHeader(1, chainhash.Hash{}, chainhash.Hash{}, time.Unix(1000, 0).UTC(), 0x1b0404cb, 0)
	prevHeader.SetHeight(100)

	n := wire.NewBlockHeader(1, prevHeader.BlockHash(), chainhash.Hash{}, time.Unix(1600, 0).UTC(), 0x1b0404cb, 0)
	n.SetHeight(101)

	if err := VerifyDifficultyTransition(n, prevHeader, time.Time{}, pow.MaxProofOfWorkBits); err != nil {
		t.Errorf("VerifyDifficultyTransition() off-boundary = %v, want nil", err)
	}

	n.Bits = 0x1b0404cc
	if err := VerifyDifficultyTransition(n, prevHeader, time.Time{}, pow.MaxProofOfWorkBits); err == nil {
		t.Error("VerifyDifficultyTransition() with changed target off-boundary = nil, want an error")
	}
}
