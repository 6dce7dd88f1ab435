package transferledger

import (
	"testing"
	"time"

	"github.com/spvwallet/walletcore/chainhash"
)

func TestAddFindByHashAndOwned(t *testing.T) {
	l := New()
	hash := chainhash.DoubleHashH([]byte("tx1"))
	type handle struct{ id int }
	h := &handle{id: 1}

	tt := l.Add(OwnedTx{Hash: hash, BlockHeight: UnconfirmedHeight}, h)

	if got := l.FindByHash(hash, false); got != tt {
		t.Errorf("FindByHash did not return the added transfer")
	}
	if got := l.FindByOwned(h); got != tt {
		t.Errorf("FindByOwned did not return the added transfer")
	}
	if got := l.FindByOwned(&handle{id: 1}); got != nil {
		t.Errorf("FindByOwned should use identity comparison, not value equality")
	}
}

func TestStateTransitionMatrix(t *testing.T) {
	l := New()
	tt := l.Add(OwnedTx{Hash: chainhash.DoubleHashH([]byte("tx"))}, nil)

	if err := l.Advance(tt, StateSubmitted); err == nil {
		t.Error("Created -> Submitted should be rejected")
	}
	if err := l.Advance(tt, StateSigned); err != nil {
		t.Fatalf("Created -> Signed should be allowed: %v", err)
	}
	if err := l.Advance(tt, StateSubmitted); err != nil {
		t.Fatalf("Signed -> Submitted should be allowed: %v", err)
	}
	if err := l.SetBlock(tt, 100, 2, time.Unix(1700000000, 0).UTC(), 1000); err != nil {
		t.Fatalf("Submitted -> Included should be allowed: %v", err)
	}
	// Included -> Included is permitted for reorg updates.
	if err := l.SetBlock(tt, 101, 3, time.Unix(1700000100, 0).UTC(), 1000); err != nil {
		t.Errorf("Included -> Included should be allowed for reorgs: %v", err)
	}
	if tt.OwnedCopy.BlockHeight != 101 {
		t.Errorf("reorg update did not refresh OwnedCopy.BlockHeight: got %d", tt.OwnedCopy.BlockHeight)
	}
}

func TestSetDeletedFromCreated(t *testing.T) {
	l := New()
	tt := l.Add(OwnedTx{Hash: chainhash.DoubleHashH([]byte("tx"))}, nil)

	if err := l.SetDeleted(tt); err != nil {
		t.Fatalf("Created -> Deleted should be allowed: %v", err)
	}
	if !tt.IsDeleted {
		t.Error("SetDeleted did not set IsDeleted")
	}
}

func TestFindLastConfirmedSend(t *testing.T) {
	l := New()

	older := l.Add(OwnedTx{Hash: chainhash.DoubleHashH([]byte("older")), IsSend: true, BlockHeight: 90}, nil)
	newer := l.Add(OwnedTx{Hash: chainhash.DoubleHashH([]byte("newer")), IsSend: true, BlockHeight: 95}, nil)
	l.Add(OwnedTx{Hash: chainhash.DoubleHashH([]byte("too-recent")), IsSend: true, BlockHeight: 99}, nil)
	l.Add(OwnedTx{Hash: chainhash.DoubleHashH([]byte("receive")), IsSend: false, BlockHeight: 95}, nil)

	// Threshold is 101 - 6 = 95: "newer" qualifies, "too-recent" does not.
	got := l.FindLastConfirmedSend(101, 6)
	if got != newer {
		t.Errorf("FindLastConfirmedSend returned %+v, want the transfer at height 95", got)
	}
	_ = older
}

func TestUnresolved(t *testing.T) {
	l := New()
	a := l.Add(OwnedTx{Hash: chainhash.DoubleHashH([]byte("a"))}, nil)
	l.Add(OwnedTx{Hash: chainhash.DoubleHashH([]byte("b"))}, nil)

	l.SetResolved(a)

	unresolved := l.Unresolved()
	if len(unresolved) != 1 || unresolved[0].OwnedCopy.Hash != chainhash.DoubleHashH([]byte("b")) {
		t.Errorf("expected only 'b' unresolved, got %+v", unresolved)
	}
}
