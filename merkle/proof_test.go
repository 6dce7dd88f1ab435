package merkle

import (
	"bytes"
	"testing"

	"github.com/spvwallet/walletcore/chainhash"
)

// TestExtractMatchesThreeTxTx2Matched reproduces spec.md §8 scenario 1: a
// 3-transaction block with only tx2 matched.
func TestExtractMatchesThreeTxTx2Matched(t *testing.T) {
	h1 := chainhash.DoubleHashH([]byte("tx1"))
	h2 := chainhash.DoubleHashH([]byte("tx2"))
	h3 := chainhash.DoubleHashH([]byte("tx3"))
	m2 := combine(h3, h3) // odd row: duplicate the left (only) child

	proof := &PartialMerkleProof{
		TotalTransactions: 3,
		Hashes:            []chainhash.Hash{h1, h2, m2},
		Flags:             []byte{0x0b}, // 0b00001011
	}

	root, matches, err := proof.ExtractMatches()
	if err != nil {
		t.Fatalf("ExtractMatches failed: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("matched count = %d, want 1", len(matches))
	}
	if matches[0].Hash != h2 {
		t.Errorf("matched hash = %x, want %x (H(tx2))", matches[0].Hash, h2)
	}
	if matches[0].Index != 1 {
		t.Errorf("matched index = %d, want 1", matches[0].Index)
	}

	m1 := combine(h1, h2)
	wantRoot := combine(m1, m2)
	if root != wantRoot {
		t.Errorf("recomputed root = %x, want %x", root, wantRoot)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	h1 := chainhash.DoubleHashH([]byte("a"))
	h2 := chainhash.DoubleHashH([]byte("b"))
	proof := &PartialMerkleProof{
		TotalTransactions: 2,
		Hashes:            []chainhash.Hash{h1, h2},
		Flags:             []byte{0x05},
	}

	var buf bytes.Buffer
	if err := proof.Serialize(&buf); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	got, err := Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	if got.TotalTransactions != proof.TotalTransactions {
		t.Errorf("TotalTransactions = %d, want %d", got.TotalTransactions, proof.TotalTransactions)
	}
	if len(got.Hashes) != len(proof.Hashes) || got.Hashes[0] != h1 || got.Hashes[1] != h2 {
		t.Errorf("hashes round trip mismatch: got %v", got.Hashes)
	}
	if !bytes.Equal(got.Flags, proof.Flags) {
		t.Errorf("flags round trip mismatch: got %x, want %x", got.Flags, proof.Flags)
	}
}

func TestExtractMatchesEmptyBlock(t *testing.T) {
	proof := &PartialMerkleProof{TotalTransactions: 0}
	root, matches, err := proof.ExtractMatches()
	if err != nil {
		t.Fatalf("ExtractMatches on empty proof failed: %v", err)
	}
	if matches != nil {
		t.Errorf("expected no matches, got %v", matches)
	}
	if root != (chainhash.Hash{}) {
		t.Errorf("expected zero root, got %x", root)
	}
}

func TestExtractMatchesTruncatedHashesErrors(t *testing.T) {
	proof := &PartialMerkleProof{
		TotalTransactions: 3,
		Hashes:            []chainhash.Hash{chainhash.DoubleHashH([]byte("only-one"))},
		Flags:             []byte{0x0b},
	}
	if _, _, err := proof.ExtractMatches(); err == nil {
		t.Error("expected error for a hash stream that is too short, got nil")
	}
}
