package walletmanager

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/addressmanager"
	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/fileservice"
	"github.com/spvwallet/walletcore/logger"
	"github.com/spvwallet/walletcore/syncevent"
	"github.com/spvwallet/walletcore/syncmanager"
	"github.com/spvwallet/walletcore/transferledger"
	"github.com/spvwallet/walletcore/util/locks"
	"github.com/spvwallet/walletcore/util/panics"
	"github.com/spvwallet/walletcore/wire"
)

// defaultTickTockPeriod is the periodic alarm interval of §4.3 ("every N
// wakeups, default: every 60 seconds").
const defaultTickTockPeriod = 60 * time.Second

// Depth selects where a rescan resumes from (§6 "depth for rescan").
type Depth int

const (
	DepthFromLastConfirmedSend Depth = iota
	DepthFromLastTrustedBlock
	DepthFromCreation
)

// Config bundles a Manager's construction-time parameters (§6
// "Configuration options").
type Config struct {
	StorageRoot             string
	Currency                string
	Network                 string
	Mode                    syncmanager.Mode
	EarliestKeyTime         int32
	ConfirmationsUntilFinal int32
	ClientCallbacks         syncmanager.ClientCallbacks
	PeerManager             syncmanager.PeerManager
	Deliver                 func(WalletEvent)
	TickTockPeriod          time.Duration
}

// Manager is the outer coordinator of §4.3: owns the wallet, the file
// service, the sync manager, and the single-threaded event loop.
type Manager struct {
	cfg    Config
	wallet Wallet
	store  *fileservice.Store
	sync   *syncmanager.Manager
	ledger *transferledger.Ledger
	peers  *addressmanager.Manager

	inbox  chan func()
	ticker *time.Ticker
	stop   chan struct{}
	wg     *locks.WaitGroup
}

// wmgrLog is the WMGR subsystem logger, resolved once at package init.
var wmgrLog, _ = logger.Get(logger.SubsystemTags.WMGR)

// Open implements the initialization contract of §4.3 steps 1-7.
func Open(cfg Config, wallet Wallet) (*Manager, error) {
	if cfg.Deliver == nil {
		return nil, errors.New("walletmanager: Deliver callback is required")
	}
	if cfg.TickTockPeriod == 0 {
		cfg.TickTockPeriod = defaultTickTockPeriod
	}

	// Step 1-2: open the per-network directory; on load failure clear all
	// three buckets and force a full sync.
	store, err := fileservice.Open(cfg.StorageRoot, cfg.Currency, cfg.Network)
	if err != nil {
		return nil, errors.Wrap(err, "walletmanager: opening file service")
	}

	_, txErr := store.LoadAllTransactions()
	loadedBlocks, blkErr := store.LoadAllBlocks()
	loadedPeers, peerErr := store.LoadAllPeers()
	if txErr != nil || blkErr != nil || peerErr != nil {
		if err := store.ClearAll(); err != nil {
			return nil, errors.Wrap(err, "walletmanager: clearing file service after load failure")
		}
		loadedBlocks, loadedPeers = nil, nil
	}

	m := &Manager{
		cfg:    cfg,
		wallet: wallet,
		store:  store,
		ledger: transferledger.New(),
		peers:  addressmanager.New(),
		inbox:  make(chan func(), 256),
		stop:   make(chan struct{}),
		wg:     locks.NewWaitGroup(),
	}
	m.peers.SetPeers(loadedPeers)

	// Step 4: construct the sync manager, resuming from the highest
	// persisted block height rather than forcing a full resync.
	var resumeHeight int32
	for _, h := range loadedBlocks {
		if h.Height() > resumeHeight {
			resumeHeight = h.Height()
		}
	}
	sync, err := syncmanager.New(syncmanager.Params{
		Mode:            cfg.Mode,
		Wallet:          wallet,
		ClientCallbacks: cfg.ClientCallbacks,
		PeerManager:     cfg.PeerManager,
		EarliestKeyTime: cfg.EarliestKeyTime,
		BlockHeight:     resumeHeight,
		Blocks:          loadedBlocks,
		Peers:           loadedPeers,
		EventSink:       m.enqueueSyncEvent,
	})
	if err != nil {
		return nil, errors.Wrap(err, "walletmanager: constructing sync manager")
	}
	m.sync = sync

	// Step 5: register wallet callbacks.
	wallet.RegisterCallbacks(m)

	m.deliver(WalletCreated())

	// Step 6: populate the tracked-transfer ledger.
	for _, snap := range wallet.Transactions() {
		tt := m.ledger.Add(snap.Tx, snap.Tx.Hash)
		if snap.Resolved {
			m.ledger.SetResolved(tt)
			m.deliver(TransactionAdded(tt))
			if snap.Tx.BlockHeight != transferledger.UnconfirmedHeight {
				m.deliver(TransactionUpdated(tt, snap.Tx.BlockHeight, snap.Tx.Timestamp))
			}
		}
	}

	// Step 7: periodic tickTock alarm.
	m.ticker = time.NewTicker(cfg.TickTockPeriod)
	spawn := panics.GoroutineWrapperFunc(wmgrLog)
	m.wg.Add()
	spawn(m.runLoop)
	m.wg.Add()
	spawn(m.tickLoop)

	return m, nil
}

// runLoop is the single event-loop goroutine; every externally observable
// callback is dispatched from here (§4.3 "Event loop").
func (m *Manager) runLoop() {
	defer m.wg.Done()
	for fn := range m.inbox {
		fn()
	}
}

func (m *Manager) tickLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ticker.C:
			m.enqueue(func() { m.sync.TickTock() })
		case <-m.stop:
			return
		}
	}
}

// enqueue posts a function to the event-loop goroutine. Safe to call from
// any goroutine (§5 "Suspension points").
func (m *Manager) enqueue(fn func()) {
	m.inbox <- fn
}

func (m *Manager) deliver(e WalletEvent) {
	m.cfg.Deliver(e)
}

// Close stops the event loop and the periodic alarm. WalletDeleted is
// delivered last, after which no further event is ever sent (§5 "Ordering
// guarantees").
func (m *Manager) Close() {
	m.ticker.Stop()
	close(m.stop)
	done := make(chan struct{})
	m.enqueue(func() {
		m.deliver(WalletDeleted())
		close(done)
	})
	<-done
	close(m.inbox)
	m.wg.Wait()
	_ = m.store.Close()
}

// SyncManager exposes the underlying sync manager so a Client-mode
// ClientCallbacks implementation can be wired to it after construction
// (the callbacks and the sync manager are mutually referential: the sync
// manager is the only thing that can supply the announce* entry points a
// callbacks implementation needs to complete its async requests).
func (m *Manager) SyncManager() *syncmanager.Manager { return m.sync }

// Connect, Disconnect, Scan, Submit forward to the sync manager; all are
// non-blocking suspension points per §5.
func (m *Manager) Connect()    { m.sync.Connect() }
func (m *Manager) Disconnect() { m.sync.Disconnect() }
func (m *Manager) Scan()       { m.sync.Scan() }
func (m *Manager) Submit(txBytes []byte, txHash chainhash.Hash) {
	m.sync.Submit(txBytes, txHash)
}

// EstimateFee implements §4.3 "Fee estimation": the result arrives
// asynchronously as a FeeEstimated event correlated by cookie.
func (m *Manager) EstimateFee(cookie uint64, amount uint64, feePerKb uint64, sizeInBytes int) {
	m.enqueue(func() {
		m.deliver(FeeEstimated(cookie, feePerKb, sizeInBytes))
	})
}

// enqueueSyncEvent is the syncmanager.Params.EventSink: it is called from
// whichever thread drives the sync manager (a peer thread in P2P mode, or
// whichever thread calls announceX in Client mode) and must not run
// handleSyncEvent directly (§5 "never acquire the wallet-manager lock
// inside a ... callback").
func (m *Manager) enqueueSyncEvent(e syncevent.Event) {
	m.enqueue(func() { m.handleSyncEvent(e) })
}

// handleSyncEvent runs on the loop goroutine, translating sync-manager
// events into wallet-manager side effects and forwarding the raw event to
// the client (§2 "Sync Manager events → Wallet Manager handlers").
func (m *Manager) handleSyncEvent(e syncevent.Event) {
	switch e.Kind {
	case syncevent.KindBlockHeightUpdated:
		m.reconcileConfirmations(e.NetworkHeight)
	case syncevent.KindTxnSubmitted:
		if tt := m.ledger.FindByHash(e.TxHash, false); tt != nil {
			if e.SubmitError != nil {
				_ = m.ledger.SetErrored(tt, errors.Errorf("submit failed: errno=%d unknown=%v", e.SubmitError.Errno, e.SubmitError.Unknown))
			} else {
				_ = m.ledger.Advance(tt, transferledger.StateSubmitted)
			}
		}
	case syncevent.KindSetBlocks:
		m.saveBlocks(true, e.Blocks)
	case syncevent.KindAddBlocks:
		m.saveBlocks(false, e.Blocks)
	case syncevent.KindSetPeers:
		m.savePeers(true, e.Peers)
	case syncevent.KindAddPeers:
		m.savePeers(false, e.Peers)
	}
	m.deliver(SyncRaw(e))
}

// saveBlocks persists blocks to the file service, clearing the bucket
// first when replace is true (§2 "Set* events replace the known set").
func (m *Manager) saveBlocks(replace bool, blocks []*wire.BlockHeader) {
	if replace {
		if err := m.store.ClearBlocks(); err != nil {
			wmgrLog.Warnf("clearing blocks bucket: %v", err)
		}
	}
	for _, h := range blocks {
		if err := m.store.SaveBlock(h); err != nil {
			wmgrLog.Warnf("persisting block %s: %v", h.BlockHash(), err)
		}
	}
}

// savePeers persists peers to the file service and the in-memory address
// manager, clearing both first when replace is true.
func (m *Manager) savePeers(replace bool, peers []*wire.NetAddress) {
	if replace {
		if err := m.store.ClearPeers(); err != nil {
			wmgrLog.Warnf("clearing peers bucket: %v", err)
		}
		m.peers.SetPeers(peers)
	} else {
		m.peers.AddPeers(peers)
	}
	for _, na := range peers {
		if err := m.store.SavePeer(na); err != nil {
			wmgrLog.Warnf("persisting peer %s: %v", na.Key(), err)
		}
	}
}

// reconcileConfirmations re-checks every unresolved transfer whenever the
// chain tip advances: a confirmed transfer with at least
// ConfirmationsUntilFinal confirmations (tip - height + 1) is marked
// resolved. Whether the transfer's input transactions are present in the
// wallet is not checked here.
func (m *Manager) reconcileConfirmations(networkHeight int32) {
	for _, tt := range m.ledger.Unresolved() {
		if tt.OwnedCopy.BlockHeight == transferledger.UnconfirmedHeight {
			continue
		}
		confirmations := networkHeight - tt.OwnedCopy.BlockHeight + 1
		if confirmations >= m.cfg.ConfirmationsUntilFinal {
			m.ledger.SetResolved(tt)
		}
	}
}

// OnBalanceChanged implements Callbacks.
func (m *Manager) OnBalanceChanged(balance uint64) {
	m.enqueue(func() { m.deliver(BalanceUpdated(balance)) })
}

// OnTransactionAdded implements Callbacks.
func (m *Manager) OnTransactionAdded(tx transferledger.OwnedTx) {
	m.enqueue(func() {
		if existing := m.ledger.FindByHash(tx.Hash, true); existing != nil {
			return
		}
		tt := m.ledger.Add(tx, tx.Hash)
		m.deliver(TransactionAdded(tt))
		if err := m.store.SaveTransaction(&fileservice.TransactionRecord{
			Hash:        tx.Hash,
			Bytes:       tx.Bytes,
			BlockHeight: uint32(tx.BlockHeight),
			Timestamp:   tx.Timestamp,
		}); err != nil {
			wmgrLog.Warnf("persisting transaction %s: %v", tx.Hash, err)
		}
	})
}

// OnTransactionUpdated implements Callbacks.
func (m *Manager) OnTransactionUpdated(hash chainhash.Hash, height int32, timestamp time.Time, confirmedFeeBasis uint64) {
	m.enqueue(func() {
		tt := m.ledger.FindByHash(hash, false)
		if tt == nil {
			return
		}
		if err := m.ledger.SetBlock(tt, height, 0, timestamp, confirmedFeeBasis); err != nil {
			wmgrLog.Warnf("invalid transfer transition for %s: %v", hash, err)
			return
		}
		m.deliver(TransactionUpdated(tt, height, timestamp))
	})
}

// OnTransactionDeleted implements Callbacks: the wallet has autonomously
// dropped the transaction (mempool reorg, double-spend resolution). The
// ledger's owned copy survives so the client still receives a well-formed
// TransactionDeleted event (§4.4).
func (m *Manager) OnTransactionDeleted(hash chainhash.Hash) {
	m.enqueue(func() {
		tt := m.ledger.FindByHash(hash, false)
		if tt == nil {
			return
		}
		if err := m.ledger.SetDeleted(tt); err != nil {
			wmgrLog.Warnf("invalid delete transition for %s: %v", hash, err)
			return
		}
		m.deliver(TransactionDeleted(tt))
	})
}
