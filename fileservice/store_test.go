package fileservice

import (
	"net"
	"testing"
	"time"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/wire"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), "btc", "testnet")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTransactionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	hash := chainhash.DoubleHashH([]byte("tx"))
	rec := &TransactionRecord{
		Hash:        hash,
		Bytes:       []byte("serialized-tx-bytes"),
		BlockHeight: 12345,
		Timestamp:   time.Unix(1700000000, 0).UTC(),
	}
	if err := s.SaveTransaction(rec); err != nil {
		t.Fatalf("SaveTransaction failed: %v", err)
	}

	got, ok, err := s.LoadTransaction(hash)
	if err != nil || !ok {
		t.Fatalf("LoadTransaction failed: ok=%v err=%v", ok, err)
	}
	if string(got.Bytes) != string(rec.Bytes) || got.BlockHeight != rec.BlockHeight || !got.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, rec)
	}

	if err := s.DeleteTransaction(hash); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	if _, ok, err := s.LoadTransaction(hash); err != nil || ok {
		t.Errorf("expected transaction to be gone after delete, ok=%v err=%v", ok, err)
	}
}

func TestBlockRoundTrip(t *testing.T) {
	s := openTestStore(t)

	prev := chainhash.DoubleHashH([]byte("prev"))
	root := chainhash.DoubleHashH([]byte("root"))
	h := wire.NewBlockHeader(1, prev, root, time.Unix(1231006505, 0).UTC(), 0x1d00ffff, 42)
	h.SetHeight(100)

	if err := s.SaveBlock(h); err != nil {
		t.Fatalf("SaveBlock failed: %v", err)
	}

	got, ok, err := s.LoadBlock(h.BlockHash())
	if err != nil || !ok {
		t.Fatalf("LoadBlock failed: ok=%v err=%v", ok, err)
	}
	if got.Height() != 100 || got.Bits != h.Bits || got.Nonce != h.Nonce {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func TestPeerRoundTrip(t *testing.T) {
	s := openTestStore(t)

	na := &wire.NetAddress{
		IP:        net.ParseIP("192.0.2.1").To16(),
		Port:      8333,
		Services:  1,
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
	if err := s.SavePeer(na); err != nil {
		t.Fatalf("SavePeer failed: %v", err)
	}

	peers, err := s.LoadAllPeers()
	if err != nil {
		t.Fatalf("LoadAllPeers failed: %v", err)
	}
	if len(peers) != 1 || peers[0].Port != 8333 {
		t.Errorf("unexpected peers: %+v", peers)
	}
}

func TestClearBlocksLeavesOtherBuckets(t *testing.T) {
	s := openTestStore(t)

	prev := chainhash.DoubleHashH([]byte("prev"))
	root := chainhash.DoubleHashH([]byte("root"))
	h := wire.NewBlockHeader(1, prev, root, time.Unix(1231006505, 0).UTC(), 0x1d00ffff, 42)
	_ = s.SaveBlock(h)

	hash := chainhash.DoubleHashH([]byte("tx"))
	_ = s.SaveTransaction(&TransactionRecord{Hash: hash, Bytes: []byte("x")})

	if err := s.ClearBlocks(); err != nil {
		t.Fatalf("ClearBlocks failed: %v", err)
	}

	blocks, err := s.LoadAllBlocks()
	if err != nil {
		t.Fatalf("LoadAllBlocks failed: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected no blocks after ClearBlocks, got %d", len(blocks))
	}

	txs, err := s.LoadAllTransactions()
	if err != nil {
		t.Fatalf("LoadAllTransactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("expected ClearBlocks to leave the transactions bucket alone, got %d", len(txs))
	}
}

func TestClearAll(t *testing.T) {
	s := openTestStore(t)

	hash := chainhash.DoubleHashH([]byte("tx"))
	_ = s.SaveTransaction(&TransactionRecord{Hash: hash, Bytes: []byte("x")})

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	txs, err := s.LoadAllTransactions()
	if err != nil {
		t.Fatalf("LoadAllTransactions failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("expected no transactions after ClearAll, got %d", len(txs))
	}
}
