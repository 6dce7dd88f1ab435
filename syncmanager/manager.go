package syncmanager

import (
	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/chainparams"
	"github.com/spvwallet/walletcore/syncevent"
	"github.com/spvwallet/walletcore/wire"
)

// syncer is the common behavior both mode implementations provide; Manager
// dispatches to one of them (§4.1, "a polymorphic façade with two concrete
// implementations selected at construction").
type syncer interface {
	Connect()
	Disconnect()
	Scan()
	Submit(txBytes []byte, txHash chainhash.Hash)
	TickTock()
}

// Manager is the public sync-manager façade (§4.1 "Public contract").
type Manager struct {
	mode   Mode
	client *clientSyncManager
	p2p    *p2pSyncManager
}

// Params bundles a Manager's construction-time dependencies.
type Params struct {
	Mode            Mode
	ChainParams     *chainparams.Params
	Wallet          Wallet
	ClientCallbacks ClientCallbacks // required iff Mode == ApiOnly
	PeerManager     PeerManager     // required iff Mode == P2POnly
	EarliestKeyTime int32
	BlockHeight     int32
	Blocks          []*wire.BlockHeader
	Peers           []*wire.NetAddress
	EventSink       func(syncevent.Event)
}

// New constructs a Manager in the requested mode (§4.1 "new(...)").
func New(p Params) (*Manager, error) {
	if p.EventSink == nil {
		return nil, errors.New("syncmanager: EventSink is required")
	}
	m := &Manager{mode: p.Mode}
	switch p.Mode {
	case ApiOnly:
		if p.ClientCallbacks == nil {
			return nil, errors.New("syncmanager: ClientCallbacks is required in ApiOnly mode")
		}
		m.client = newClientSyncManager(p.Wallet, p.ClientCallbacks, p.BlockHeight, p.EventSink)
	case P2POnly:
		if p.PeerManager == nil {
			return nil, errors.New("syncmanager: PeerManager is required in P2POnly mode")
		}
		m.p2p = newP2PSyncManager(p.PeerManager, p.EventSink)
	default:
		return nil, errors.Errorf("syncmanager: unknown mode %d", p.Mode)
	}
	return m, nil
}

func (m *Manager) impl() syncer {
	if m.mode == ApiOnly {
		return m.client
	}
	return m.p2p
}

// Connect implements the public contract.
func (m *Manager) Connect() { m.impl().Connect() }

// Disconnect implements the public contract.
func (m *Manager) Disconnect() { m.impl().Disconnect() }

// Scan implements the public contract.
func (m *Manager) Scan() { m.impl().Scan() }

// Submit implements the public contract.
func (m *Manager) Submit(txBytes []byte, txHash chainhash.Hash) { m.impl().Submit(txBytes, txHash) }

// TickTock implements the public contract.
func (m *Manager) TickTock() { m.impl().TickTock() }

// AnnounceGetBlockNumber delivers a Client-mode GetBlockNumber response.
// It is a programming error to call this in P2POnly mode.
func (m *Manager) AnnounceGetBlockNumber(height int32) {
	m.requireClient().AnnounceGetBlockNumber(height)
}

// AnnounceGetTransactionsItem delivers one Client-mode transaction result.
func (m *Manager) AnnounceGetTransactionsItem(requestID uint64, tx TxAnnouncement) {
	m.requireClient().AnnounceGetTransactionsItem(requestID, tx)
}

// AnnounceGetTransactionsDone completes a Client-mode chunk query.
func (m *Manager) AnnounceGetTransactionsDone(requestID uint64, success bool) {
	m.requireClient().AnnounceGetTransactionsDone(requestID, success)
}

// AnnounceSubmitTransaction delivers a Client-mode submit result.
func (m *Manager) AnnounceSubmitTransaction(requestID uint64, submitErr *syncevent.SubmitError) {
	m.requireClient().AnnounceSubmitTransaction(requestID, submitErr)
}

func (m *Manager) requireClient() *clientSyncManager {
	if m.mode != ApiOnly {
		panic("syncmanager: announce* called on a non-ApiOnly Manager")
	}
	return m.client
}
