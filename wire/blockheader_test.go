package wire

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spvwallet/walletcore/chainhash"
)

func TestBlockHeaderSerializeRoundTrip(t *testing.T) {
	prev := chainhash.DoubleHashH([]byte("prev"))
	root := chainhash.DoubleHashH([]byte("root"))
	bh := NewBlockHeader(1, prev, root, time.Unix(1231006505, 0).UTC(), 0x1d00ffff, 2083236893)

	var buf bytes.Buffer
	if err := bh.Serialize(&buf); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if buf.Len() != BlockHeaderPayload {
		t.Errorf("serialized header length = %d, want %d", buf.Len(), BlockHeaderPayload)
	}

	got, err := DeserializeBlockHeader(&buf)
	if err != nil {
		t.Fatalf("DeserializeBlockHeader failed: %v", err)
	}

	if got.Version != bh.Version || got.PrevBlock != bh.PrevBlock ||
		got.MerkleRoot != bh.MerkleRoot || !got.Timestamp.Equal(bh.Timestamp) ||
		got.Bits != bh.Bits || got.Nonce != bh.Nonce {
		t.Errorf("round trip mismatch:\ngot  %s\nwant %s", spew.Sdump(got), spew.Sdump(bh))
	}

	if got.Height() != UnknownHeight {
		t.Errorf("deserialized header height = %d, want UnknownHeight", got.Height())
	}
}

func TestBlockHashInvariant(t *testing.T) {
	prev := chainhash.DoubleHashH([]byte("prev"))
	root := chainhash.DoubleHashH([]byte("root"))
	bh := NewBlockHeader(1, prev, root, time.Unix(1231006505, 0).UTC(), 0x1d00ffff, 2083236893)

	var buf bytes.Buffer
	_ = bh.Serialize(&buf)
	want := chainhash.DoubleHashH(buf.Bytes())

	if got := bh.BlockHash(); !reflect.DeepEqual(got, want) {
		t.Errorf("BlockHash() = %x, want doubleSHA256(serialize()) = %x", got, want)
	}
}

func TestNewBlockHeaderFromHash(t *testing.T) {
	hash := chainhash.DoubleHashH([]byte("reported-by-peer"))
	bh := NewBlockHeaderFromHash(hash, 42)

	if bh.Height() != 42 {
		t.Errorf("Height() = %d, want 42", bh.Height())
	}
	if got := bh.BlockHash(); got != hash {
		t.Errorf("BlockHash() = %x, want the hash it was built from %x", got, hash)
	}
}
