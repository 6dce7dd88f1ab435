package syncmanager

import (
	"testing"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncevent"
)

type fakePeerManager struct {
	handler PeerEventHandler
}

func (p *fakePeerManager) SetEventHandler(h PeerEventHandler) { p.handler = h }
func (p *fakePeerManager) Connect() error                     { return nil }
func (p *fakePeerManager) Disconnect()                        {}
func (p *fakePeerManager) Scan()                              {}
func (p *fakePeerManager) Submit(txBytes []byte) error        { return nil }
func (p *fakePeerManager) SyncProgress() float64              { return 0 }

// TestOnSaveBlocksCarriesHashAndHeight guards against the block/height
// pair silently collapsing to a zero-value header on the way to a
// SetBlocks/AddBlocks event.
func TestOnSaveBlocksCarriesHashAndHeight(t *testing.T) {
	peers := &fakePeerManager{}
	var events []syncevent.Event
	m := newP2PSyncManager(peers, func(e syncevent.Event) { events = append(events, e) })

	hash := chainhash.DoubleHashH([]byte("reported-block"))
	m.OnSaveBlocks(true, []chainhash.Hash{hash}, []int32{777})

	if len(events) != 1 || events[0].Kind != syncevent.KindSetBlocks {
		t.Fatalf("expected one SetBlocks event, got %+v", events)
	}
	headers := events[0].Blocks
	if len(headers) != 1 {
		t.Fatalf("expected one header, got %d", len(headers))
	}
	if headers[0].BlockHash() != hash {
		t.Errorf("BlockHash() = %x, want the reported hash %x", headers[0].BlockHash(), hash)
	}
	if headers[0].Height() != 777 {
		t.Errorf("Height() = %d, want 777", headers[0].Height())
	}
}

// TestOnSavePeersCarriesAddress guards against peer addresses collapsing
// to an empty NetAddress on the way to a SetPeers/AddPeers event.
func TestOnSavePeersCarriesAddress(t *testing.T) {
	peers := &fakePeerManager{}
	var events []syncevent.Event
	m := newP2PSyncManager(peers, func(e syncevent.Event) { events = append(events, e) })

	m.OnSavePeers(false, []Address{"192.0.2.5:8333"})

	if len(events) != 1 || events[0].Kind != syncevent.KindAddPeers {
		t.Fatalf("expected one AddPeers event, got %+v", events)
	}
	addrs := events[0].Peers
	if len(addrs) != 1 {
		t.Fatalf("expected one peer, got %d", len(addrs))
	}
	if addrs[0].IP.String() != "192.0.2.5" || addrs[0].Port != 8333 {
		t.Errorf("parsed peer = %+v, want IP 192.0.2.5 port 8333", addrs[0])
	}
}
