package syncmanager

import (
	"testing"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncevent"
)

type fakeWallet struct {
	firstExternal Address
	firstInternal Address
	all           []Address
}

func (w *fakeWallet) UnusedAddressWindow(gapLimit int) (external, internal []Address, firstUnusedExternal, firstUnusedInternal Address) {
	return nil, nil, w.firstExternal, w.firstInternal
}

func (w *fakeWallet) AllAddresses() []Address { return w.all }

func (w *fakeWallet) RegisterTransaction(tx TxAnnouncement) (bool, interface{}) { return true, nil }

type getTxCall struct {
	begHeight, endHeight int32
	requestID            uint64
}

type fakeClient struct {
	calls []getTxCall
}

func (c *fakeClient) GetBlockNumber(requestID uint64) {}
func (c *fakeClient) GetTransactions(addresses []Address, begHeight, endHeight int32, requestID uint64) {
	c.calls = append(c.calls, getTxCall{begHeight, endHeight, requestID})
}
func (c *fakeClient) SubmitTransaction(txBytes []byte, txHash chainhash.Hash, requestID uint64) {}

// TestThreeChunkSync reproduces spec.md §8 scenario 5: begHeight=0,
// endHeight=120001, chunkSize=50000, OFFSET=144 yields exactly the chunks
// [0,50000), [50000,100000), [100000,120001), then SyncStopped{success}.
func TestThreeChunkSync(t *testing.T) {
	wallet := &fakeWallet{firstExternal: "ext0", firstInternal: "int0"}
	client := &fakeClient{}
	var events []syncevent.Event
	sink := func(e syncevent.Event) { events = append(events, e) }

	m := newClientSyncManager(wallet, client, 0, sink)
	m.AnnounceGetBlockNumber(120000)
	m.Connect()

	if len(client.calls) != 1 || client.calls[0].begHeight != 0 || client.calls[0].endHeight != 50000 {
		t.Fatalf("chunk 1 wrong: %+v", client.calls)
	}

	m.AnnounceGetTransactionsDone(client.calls[0].requestID, true)
	if len(client.calls) != 2 || client.calls[1].begHeight != 50000 || client.calls[1].endHeight != 100000 {
		t.Fatalf("chunk 2 wrong: %+v", client.calls)
	}

	m.AnnounceGetTransactionsDone(client.calls[1].requestID, true)
	if len(client.calls) != 3 || client.calls[2].begHeight != 100000 || client.calls[2].endHeight != 120001 {
		t.Fatalf("chunk 3 wrong: %+v", client.calls)
	}

	m.AnnounceGetTransactionsDone(client.calls[2].requestID, true)
	if len(client.calls) != 3 {
		t.Fatalf("expected no chunk 4, got %+v", client.calls)
	}

	last := events[len(events)-1]
	if last.Kind != syncevent.KindSyncStopped || last.SyncStoppedReason != syncevent.SyncStoppedComplete {
		t.Fatalf("expected final SyncStopped{success}, got %+v", last)
	}
	if m.syncedHeight != 120000 {
		t.Errorf("expected syncedHeight 120000, got %d", m.syncedHeight)
	}
}

// TestAddressWindowExpansionReissuesChunk reproduces spec.md §8 scenario 6:
// a chunk whose completion reveals a newly-derived address must be
// re-issued over the same height range before the chunk advances.
func TestAddressWindowExpansionReissuesChunk(t *testing.T) {
	wallet := &fakeWallet{firstExternal: "ext0", firstInternal: "int0"}
	client := &fakeClient{}
	sink := func(e syncevent.Event) {}

	m := newClientSyncManager(wallet, client, 0, sink)
	m.AnnounceGetBlockNumber(100000)
	m.Connect()

	if len(client.calls) != 1 {
		t.Fatalf("expected one chunk query, got %+v", client.calls)
	}
	firstRID := client.calls[0].requestID
	firstRange := client.calls[0]

	// A transaction paying address #5 was discovered; the wallet derives a
	// new watermark before reporting chunk completion.
	wallet.firstExternal = "ext6"

	m.AnnounceGetTransactionsDone(firstRID, true)

	if len(client.calls) != 2 {
		t.Fatalf("expected a re-issued query for the same range, got %+v", client.calls)
	}
	if client.calls[1].begHeight != firstRange.begHeight || client.calls[1].endHeight != firstRange.endHeight {
		t.Errorf("re-issued query changed range: got %+v, want same as %+v", client.calls[1], firstRange)
	}
	if client.calls[1].requestID == firstRID {
		t.Errorf("re-issued query should carry a fresh request id")
	}

	// Now the window is stable; completion should advance the chunk.
	m.AnnounceGetTransactionsDone(client.calls[1].requestID, true)
	if len(client.calls) != 3 {
		t.Fatalf("expected chunk to advance once window stabilized, got %+v", client.calls)
	}
}

func TestDisconnectCancelsFullSync(t *testing.T) {
	wallet := &fakeWallet{}
	client := &fakeClient{}
	var events []syncevent.Event
	sink := func(e syncevent.Event) { events = append(events, e) }

	m := newClientSyncManager(wallet, client, 0, sink)
	m.AnnounceGetBlockNumber(1000)
	m.Connect()

	m.Disconnect()

	var sawCancelled bool
	for _, e := range events {
		if e.Kind == syncevent.KindSyncStopped && e.SyncStoppedReason == syncevent.SyncStoppedCancelled {
			sawCancelled = true
		}
	}
	if !sawCancelled {
		t.Errorf("expected SyncStopped{cancelled} on disconnect mid-sync, got %+v", events)
	}
	if m.chunk.inFlight() {
		t.Errorf("expected chunk state to be reset after disconnect")
	}
}
