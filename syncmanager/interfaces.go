// Package syncmanager implements the mode-polymorphic sync façade of
// spec.md §4.1: a Client (API/BRD) mode built on chunked, address-expanding
// queries, and a P2P mode that is a thin translator over a peer manager.
//
// Grounded on the teacher's app/appmessage request-response shape for the
// P2P translation table and on original_source/bitcoin/BRSyncManager.c for
// the Client-mode chunking algorithm, re-expressed as Go interfaces per the
// REDESIGN FLAGS (spec.md §9): the two modes become two implementations of
// one sealed interface behind a single dispatching Manager, instead of a
// C function-pointer-and-void*-context struct.
package syncmanager

import (
	"time"

	"github.com/spvwallet/walletcore/chainhash"
)

// Mode selects which concrete sync strategy a Manager drives.
type Mode int

const (
	ApiOnly Mode = iota
	P2POnly
)

// Address is an opaque wallet address identifier. Address derivation is
// out of the core's scope (§1); the core only needs to pass addresses
// through to a client/peer query and compare them for equality.
type Address string

// TxAnnouncement is a transaction as announced by the client or peer
// layer: enough for the sync manager to register it with the wallet and
// for the wallet manager to persist it, without the core needing to
// understand its internal structure (§3 Transaction, "opaque to the core").
type TxAnnouncement struct {
	Hash        chainhash.Hash
	Bytes       []byte
	Signed      bool
	BlockHeight int32
	Timestamp   time.Time
}

// Wallet is the subset of wallet behavior the sync manager consumes: the
// address-window generation and registration hooks described in §4.1.1.
// Balance math, derivation, and UTXO selection live entirely in the
// wallet and are not part of this interface.
type Wallet interface {
	// UnusedAddressWindow returns the unused-address window (both chains,
	// up to the gap limit) and each chain's first-unused address — the
	// watermark captured at chunk-start per §4.1.1 step 5.
	UnusedAddressWindow(gapLimit int) (external, internal []Address, firstUnusedExternal, firstUnusedInternal Address)
	// AllAddresses returns every wallet address (used + unused, external +
	// internal, plus legacy-format equivalents where applicable) as query
	// inputs for a sync request (§4.1.1 step 6).
	AllAddresses() []Address
	// RegisterTransaction registers tx with the wallet. accepted is false
	// if the wallet rejected it outright; retained is the handle the
	// wallet will recognize this transaction by from now on — it may
	// differ from tx if the wallet's de-duplication already held a copy.
	RegisterTransaction(tx TxAnnouncement) (accepted bool, retained interface{})
}

// ClientCallbacks is the API/BRD-indexer client consumed in Client mode.
// Every method is asynchronous: the result arrives later via the matching
// AnnounceX call on the Manager, correlated by requestID (§4.1.1).
type ClientCallbacks interface {
	GetBlockNumber(requestID uint64)
	GetTransactions(addresses []Address, chunkBegHeight, chunkEndHeight int32, requestID uint64)
	SubmitTransaction(txBytes []byte, txHash chainhash.Hash, requestID uint64)
}

// PeerEventHandler is implemented by the P2P-mode sync manager and called
// by the PeerManager to report peer-layer events (§4.1.2's translation
// table). This is the interface side of the teacher's peer-manager
// callback struct.
type PeerEventHandler interface {
	OnSyncStarted()
	OnSyncStopped()
	OnTxStatusUpdate(networkHeight int32, txs []TxAnnouncement)
	OnSaveBlocks(replace bool, blocks []chainhash.Hash, heights []int32)
	OnSavePeers(replace bool, peers []Address)
	OnTxPublished(txHash chainhash.Hash, err error)
	OnDisconnected()
}

// PeerManager is the peer-to-peer framing layer the P2P-mode sync manager
// delegates to (§1, "out of scope: the peer-to-peer framing layer" — only
// the interface it must satisfy is this core's concern).
type PeerManager interface {
	SetEventHandler(handler PeerEventHandler)
	Connect() error
	Disconnect()
	Scan()
	Submit(txBytes []byte) error
	SyncProgress() float64 // in [0, 1]; values outside are ignored
}
