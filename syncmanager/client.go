package syncmanager

import (
	"sync"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncevent"
)

// defaultOffsetBlocks is the "maximum days the indexer might lag" constant
// of §4.1.1: 144 blocks, about a day at ten minutes per block.
const defaultOffsetBlocks = 144

// defaultChunkSize is CHUNK_SIZE of §4.1.1.
const defaultChunkSize = 50000

// defaultGapLimit bounds the unused-address window generated at the start
// of each chunk.
const defaultGapLimit = 20

// effects collects everything a locked clientSyncManager method decided to
// do, to be carried out once the lock is released: emitted events and at
// most one outbound client call (§4.1.3, "emission of all events must
// happen after releasing the internal lock").
type effects struct {
	events  []syncevent.Event
	query   *queryCall
	getBlk  bool
	getBlkID uint64
}

type queryCall struct {
	addresses []Address
	begHeight int32
	endHeight int32
	requestID uint64
}

// clientSyncManager implements the Client (API/BRD) mode sync algorithm of
// spec.md §4.1.1, grounded on original_source/bitcoin/BRSyncManager.c's
// state machine and re-expressed as a lock/plan/apply cycle instead of C's
// callback-from-inside-the-lock style, per the non-blocking-callback rule
// of §5.
type clientSyncManager struct {
	mutex sync.Mutex
	conn  connection

	chunk           SyncChunk
	syncedHeight    int32
	networkHeight   int32
	initBlockHeight int32

	offsetBlocks int32
	chunkSize    int32
	gapLimit     int

	queryAddresses []Address
	submitRequests map[uint64]chainhash.Hash
	nextRequestID  uint64

	wallet Wallet
	client ClientCallbacks
	sink   func(syncevent.Event)
}

// newClientSyncManager constructs a Client-mode sync manager at the given
// starting height.
func newClientSyncManager(wallet Wallet, client ClientCallbacks, initBlockHeight int32, sink func(syncevent.Event)) *clientSyncManager {
	return &clientSyncManager{
		syncedHeight:    initBlockHeight,
		networkHeight:   initBlockHeight,
		initBlockHeight: initBlockHeight,
		offsetBlocks:    defaultOffsetBlocks,
		chunkSize:       defaultChunkSize,
		gapLimit:        defaultGapLimit,
		submitRequests:  make(map[uint64]chainhash.Hash),
		wallet:          wallet,
		client:          client,
		sink:            sink,
	}
}

func (m *clientSyncManager) freshRequestID() uint64 {
	m.nextRequestID++
	if m.nextRequestID == 0 {
		m.nextRequestID = 1
	}
	return m.nextRequestID
}

// fullSyncInFlight and cancelSync/startSyncIfNeeded satisfy connectHooks.
func (m *clientSyncManager) fullSyncInFlight() bool { return m.chunk.inFlight() && m.chunk.IsFullSync }

func (m *clientSyncManager) cancelSync() {
	m.chunk.reset()
}

func (m *clientSyncManager) startSyncIfNeeded() {}

func (m *clientSyncManager) apply(eff effects) {
	for _, e := range eff.events {
		m.sink(e)
	}
	if eff.query != nil {
		m.client.GetTransactions(eff.query.addresses, eff.query.begHeight, eff.query.endHeight, eff.query.requestID)
	}
	if eff.getBlk {
		m.client.GetBlockNumber(eff.getBlkID)
	}
}

// Connect runs connect() (§4.1.3).
func (m *clientSyncManager) Connect() {
	m.mutex.Lock()
	tagEvents := m.conn.connect(m)
	eff := m.planStartSyncLocked()
	eff.events = append(mapConnEvents(tagEvents), eff.events...)
	m.mutex.Unlock()
	m.apply(eff)
}

// Disconnect runs disconnect() (§4.1.3).
func (m *clientSyncManager) Disconnect() {
	m.mutex.Lock()
	tagEvents := m.conn.disconnect(m)
	m.mutex.Unlock()
	m.apply(effects{events: mapConnEvents(tagEvents)})
}

// Scan runs scan() (§4.1.1 "Scan").
func (m *clientSyncManager) Scan() {
	m.mutex.Lock()
	var eff effects
	if m.conn.state == stateDisconnected {
		m.conn.state = stateConnected
		eff.events = append(eff.events, syncevent.Connected())
	}
	m.syncedHeight = m.initBlockHeight
	if m.chunk.inFlight() && m.chunk.IsFullSync {
		eff.events = append(eff.events, syncevent.SyncStopped(syncevent.SyncStoppedCancelled))
	}
	m.chunk.reset()
	startEff := m.planStartSyncLocked()
	eff.events = append(eff.events, startEff.events...)
	eff.query = startEff.query
	eff.getBlk = startEff.getBlk
	eff.getBlkID = startEff.getBlkID
	m.mutex.Unlock()
	m.apply(eff)
}

// Submit issues a fresh submit request for txBytes/txHash (§4.1.1 "Submit").
func (m *clientSyncManager) Submit(txBytes []byte, txHash chainhash.Hash) {
	m.mutex.Lock()
	rid := m.freshRequestID()
	m.submitRequests[rid] = txHash
	m.mutex.Unlock()
	m.client.SubmitTransaction(txBytes, txHash, rid)
}

// TickTock runs tickTock() (§4.1.1 "TickTock"): the network-height poll is
// always issued. The request id is not remembered; AnnounceGetBlockNumber
// accepts any reported height, raising networkHeight only when it grew,
// and then starts a sync if one is needed.
func (m *clientSyncManager) TickTock() {
	m.mutex.Lock()
	rid := m.freshRequestID()
	m.mutex.Unlock()
	m.client.GetBlockNumber(rid)
}

// AnnounceGetBlockNumber delivers the async result of a GetBlockNumber call.
func (m *clientSyncManager) AnnounceGetBlockNumber(height int32) {
	m.mutex.Lock()
	var eff effects
	if height > m.networkHeight {
		m.networkHeight = height
		eff.events = append(eff.events, syncevent.BlockHeightUpdated(height))
	}
	startEff := m.planStartSyncLocked()
	eff.events = append(eff.events, startEff.events...)
	eff.query = startEff.query
	m.mutex.Unlock()
	m.apply(eff)
}

// AnnounceGetTransactionsItem delivers one transaction found during the
// in-flight chunk query (§4.1.1 "Per-transaction announcement").
func (m *clientSyncManager) AnnounceGetTransactionsItem(rid uint64, tx TxAnnouncement) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if rid != m.chunk.RequestID || m.conn.state != stateConnected || !tx.Signed {
		return
	}
	m.wallet.RegisterTransaction(tx)
}

// AnnounceGetTransactionsDone completes (or re-issues, or advances) the
// in-flight chunk (§4.1.1 "Per-chunk completion").
func (m *clientSyncManager) AnnounceGetTransactionsDone(rid uint64, success bool) {
	m.mutex.Lock()
	var eff effects
	if rid != m.chunk.RequestID {
		m.mutex.Unlock()
		return
	}

	if !success {
		if m.chunk.IsFullSync {
			eff.events = append(eff.events, syncevent.SyncStopped(syncevent.SyncStoppedFailure))
		}
		m.chunk.reset()
		m.mutex.Unlock()
		m.apply(eff)
		return
	}

	_, _, firstExt, firstInt := m.wallet.UnusedAddressWindow(m.gapLimit)
	expanded := firstExt != m.chunk.LastExternalAddress || firstInt != m.chunk.LastInternalAddress

	if expanded {
		m.chunk.LastExternalAddress = firstExt
		m.chunk.LastInternalAddress = firstInt
		m.queryAddresses = m.wallet.AllAddresses()
		m.reissueChunkLocked(&eff)
		m.mutex.Unlock()
		m.apply(eff)
		return
	}

	if m.chunk.ChunkEndHeight < m.chunk.EndHeight {
		m.chunk.ChunkBegHeight = m.chunk.ChunkEndHeight
		m.chunk.ChunkEndHeight = min32(m.chunk.ChunkEndHeight+m.chunk.ChunkSize, m.chunk.EndHeight)
		eff.events = append(eff.events, syncevent.SyncProgress(m.chunk.progressPercent()))
		m.reissueChunkLocked(&eff)
		m.mutex.Unlock()
		m.apply(eff)
		return
	}

	m.syncedHeight = m.chunk.EndHeight - 1
	isFullSync := m.chunk.IsFullSync
	m.chunk.reset()
	if isFullSync {
		eff.events = append(eff.events, syncevent.SyncStopped(syncevent.SyncStoppedComplete))
	}
	m.mutex.Unlock()
	m.apply(eff)
}

// AnnounceSubmitTransaction delivers the async result of a Submit call.
func (m *clientSyncManager) AnnounceSubmitTransaction(rid uint64, submitErr *syncevent.SubmitError) {
	m.mutex.Lock()
	hash, ok := m.submitRequests[rid]
	delete(m.submitRequests, rid)
	m.mutex.Unlock()
	if !ok {
		return
	}
	m.sink(syncevent.TxnSubmitted(hash, submitErr))
}

// reissueChunkLocked re-queries the current chunk range with
// m.queryAddresses. Caller holds m.mutex.
func (m *clientSyncManager) reissueChunkLocked(eff *effects) {
	rid := m.freshRequestID()
	m.chunk.RequestID = rid
	eff.query = &queryCall{
		addresses: m.queryAddresses,
		begHeight: m.chunk.ChunkBegHeight,
		endHeight: m.chunk.ChunkEndHeight,
		requestID: rid,
	}
}

// planStartSyncLocked implements the "Sync start policy" of §4.1.1. Caller
// holds m.mutex. It is a no-op (empty effects) unless requestId == 0 and
// the connection is Connected.
func (m *clientSyncManager) planStartSyncLocked() effects {
	var eff effects
	if m.chunk.inFlight() || m.conn.state != stateConnected {
		return eff
	}

	endHeight := maxi32(m.syncedHeight, m.networkHeight) + 1
	begHeight := mini32(m.syncedHeight, maxi32(0, endHeight-m.offsetBlocks))

	chunk := SyncChunk{
		BegHeight:      begHeight,
		EndHeight:      endHeight,
		ChunkSize:      m.chunkSize,
		ChunkBegHeight: begHeight,
		ChunkEndHeight: min32(begHeight+m.chunkSize, endHeight),
		IsFullSync:     (endHeight - begHeight) > m.offsetBlocks,
	}

	_, _, firstExt, firstInt := m.wallet.UnusedAddressWindow(m.gapLimit)
	chunk.LastExternalAddress = firstExt
	chunk.LastInternalAddress = firstInt
	m.queryAddresses = m.wallet.AllAddresses()

	chunk.RequestID = m.freshRequestID()
	m.chunk = chunk

	if chunk.IsFullSync {
		eff.events = append(eff.events, syncevent.SyncStarted())
	}
	eff.query = &queryCall{
		addresses: m.queryAddresses,
		begHeight: chunk.ChunkBegHeight,
		endHeight: chunk.ChunkEndHeight,
		requestID: chunk.RequestID,
	}
	return eff
}

func mapConnEvents(tags []Event) []syncevent.Event {
	out := make([]syncevent.Event, 0, len(tags))
	for _, t := range tags {
		switch t {
		case eventConnected:
			out = append(out, syncevent.Connected())
		case eventDisconnected:
			out = append(out, syncevent.Disconnected(syncevent.DisconnectRequested))
		case eventSyncStoppedCancelled:
			out = append(out, syncevent.SyncStopped(syncevent.SyncStoppedCancelled))
		}
	}
	return out
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxi32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func mini32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
