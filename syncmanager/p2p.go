package syncmanager

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncevent"
	"github.com/spvwallet/walletcore/wire"
)

// p2pSyncManager is the thin peer-manager adapter of spec.md §4.1.2,
// grounded on the teacher's protocol/flowcontext event-to-callback
// plumbing: each PeerManager callback is translated to zero or more
// syncevent.Events per the translation table, under the same connection
// state machine as Client mode.
type p2pSyncManager struct {
	mutex sync.Mutex
	conn  connection

	fullSync bool
	peers    PeerManager
	sink     func(syncevent.Event)
}

func newP2PSyncManager(peers PeerManager, sink func(syncevent.Event)) *p2pSyncManager {
	m := &p2pSyncManager{peers: peers, sink: sink}
	peers.SetEventHandler(m)
	return m
}

func (m *p2pSyncManager) fullSyncInFlight() bool { return m.fullSync }
func (m *p2pSyncManager) cancelSync()            { m.fullSync = false }
func (m *p2pSyncManager) startSyncIfNeeded()     {}

// Connect runs connect() (§4.1.3): delegates the actual network connect to
// the peer manager once the state transition is decided.
func (m *p2pSyncManager) Connect() {
	m.mutex.Lock()
	tags := m.conn.connect(m)
	m.mutex.Unlock()
	for _, t := range tags {
		m.sink(mapConnEvent(t))
	}
	_ = m.peers.Connect()
}

// Disconnect runs disconnect() (§4.1.3).
func (m *p2pSyncManager) Disconnect() {
	m.mutex.Lock()
	tags := m.conn.disconnect(m)
	m.mutex.Unlock()
	for _, t := range tags {
		m.sink(mapConnEvent(t))
	}
	m.peers.Disconnect()
}

// Scan asks the peer manager to perform a fresh scan.
func (m *p2pSyncManager) Scan() {
	m.mutex.Lock()
	if m.conn.state == stateDisconnected {
		m.conn.state = stateConnected
		m.mutex.Unlock()
		m.sink(syncevent.Connected())
	} else {
		m.mutex.Unlock()
	}
	m.peers.Scan()
}

// Submit forwards a transaction to the peer manager for broadcast; the
// result arrives later via OnTxPublished.
func (m *p2pSyncManager) Submit(txBytes []byte, txHash chainhash.Hash) {
	if err := m.peers.Submit(txBytes); err != nil {
		m.sink(syncevent.TxnSubmitted(txHash, &syncevent.SubmitError{Unknown: true}))
	}
}

// TickTock polls peerManager.syncProgress() and emits SyncProgress when
// the result lies in (0, 1) (§4.1.2 "Progress during P2P sync").
func (m *p2pSyncManager) TickTock() {
	p := m.peers.SyncProgress()
	if p > 0 && p < 1 {
		m.sink(syncevent.SyncProgress(p * 100))
	}
}

// OnSyncStarted implements PeerEventHandler.
func (m *p2pSyncManager) OnSyncStarted() {
	m.mutex.Lock()
	transitioning := m.conn.state == stateDisconnected
	if transitioning {
		m.conn.state = stateConnected
	}
	m.fullSync = true
	m.mutex.Unlock()

	if transitioning {
		m.sink(syncevent.Connected())
	}
	m.sink(syncevent.SyncStarted())
}

// OnSyncStopped implements PeerEventHandler.
func (m *p2pSyncManager) OnSyncStopped() {
	m.mutex.Lock()
	m.fullSync = false
	m.mutex.Unlock()
	m.sink(syncevent.SyncStopped(syncevent.SyncStoppedComplete))
}

// OnTxStatusUpdate implements PeerEventHandler: possibly Connected,
// possibly BlockHeightUpdated, then TxnsUpdated.
func (m *p2pSyncManager) OnTxStatusUpdate(networkHeight int32, txs []TxAnnouncement) {
	m.mutex.Lock()
	transitioning := m.conn.state == stateDisconnected
	if transitioning {
		m.conn.state = stateConnected
	}
	m.mutex.Unlock()

	if transitioning {
		m.sink(syncevent.Connected())
	}
	if networkHeight > 0 {
		m.sink(syncevent.BlockHeightUpdated(networkHeight))
	}
	m.sink(syncevent.Event{Kind: syncevent.KindTxnsUpdated, NetworkHeight: networkHeight})
}

// OnSaveBlocks implements PeerEventHandler.
func (m *p2pSyncManager) OnSaveBlocks(replace bool, blocks []chainhash.Hash, heights []int32) {
	headers := make([]*wire.BlockHeader, 0, len(blocks))
	for i := range blocks {
		headers = append(headers, wire.NewBlockHeaderFromHash(blocks[i], heights[i]))
	}
	if replace {
		m.sink(syncevent.SetBlocks(headers))
	} else {
		m.sink(syncevent.AddBlocks(headers))
	}
}

// OnSavePeers implements PeerEventHandler.
func (m *p2pSyncManager) OnSavePeers(replace bool, peers []Address) {
	addrs := make([]*wire.NetAddress, 0, len(peers))
	for _, p := range peers {
		addrs = append(addrs, parsePeerAddress(p))
	}
	if replace {
		m.sink(syncevent.SetPeers(addrs))
	} else {
		m.sink(syncevent.AddPeers(addrs))
	}
}

// parsePeerAddress turns an opaque "host:port" Address into a NetAddress,
// stamped with the time it was reported as a last-seen timestamp. A bare
// host with no port (or an address that fails to parse as host:port) is
// taken as the host with no port.
func parsePeerAddress(a Address) *wire.NetAddress {
	host, portStr, err := net.SplitHostPort(string(a))
	if err != nil {
		return &wire.NetAddress{IP: net.ParseIP(string(a)), Timestamp: time.Now()}
	}
	port, _ := strconv.ParseUint(portStr, 10, 16)
	return &wire.NetAddress{IP: net.ParseIP(host), Port: uint16(port), Timestamp: time.Now()}
}

// OnTxPublished implements PeerEventHandler.
func (m *p2pSyncManager) OnTxPublished(txHash chainhash.Hash, err error) {
	var submitErr *syncevent.SubmitError
	if err != nil {
		submitErr = &syncevent.SubmitError{Unknown: true}
	}
	m.sink(syncevent.TxnSubmitted(txHash, submitErr))
}

// OnDisconnected implements PeerEventHandler: the peer manager reported a
// disconnection on its own (not requested through Disconnect()).
func (m *p2pSyncManager) OnDisconnected() {
	m.mutex.Lock()
	wasFullSync := m.fullSync
	m.fullSync = false
	m.conn.state = stateDisconnected
	m.mutex.Unlock()

	if wasFullSync {
		m.sink(syncevent.SyncStopped(syncevent.SyncStoppedCancelled))
	}
	m.sink(syncevent.Disconnected(syncevent.DisconnectUnknown))
}

func mapConnEvent(t Event) syncevent.Event {
	switch t {
	case eventConnected:
		return syncevent.Connected()
	case eventDisconnected:
		return syncevent.Disconnected(syncevent.DisconnectRequested)
	case eventSyncStoppedCancelled:
		return syncevent.SyncStopped(syncevent.SyncStoppedCancelled)
	default:
		return syncevent.Event{}
	}
}
