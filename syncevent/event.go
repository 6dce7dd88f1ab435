// Package syncevent defines the event taxonomy emitted by the sync manager
// (§4.1) — a sum type expressed as a Kind tag plus per-kind payload fields,
// per the REDESIGN FLAGS in spec.md §9 ("global event handler type tables"
// become a sum type of event variants plus a dispatcher method).
package syncevent

import (
	"time"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/wire"
)

// Kind tags the variant of an Event.
type Kind int

const (
	KindConnected Kind = iota
	KindDisconnected
	KindSyncStarted
	KindSyncProgress
	KindSyncStopped
	KindBlockHeightUpdated
	KindTxnsUpdated
	KindTxnSubmitted
	KindSetBlocks
	KindAddBlocks
	KindSetPeers
	KindAddPeers
)

// DisconnectReason is carried by a Disconnected event (§7).
type DisconnectReason int

const (
	DisconnectRequested DisconnectReason = iota
	DisconnectPosixError
	DisconnectUnknown
)

// SyncStoppedReason is carried by a SyncStopped event (§7).
type SyncStoppedReason int

const (
	SyncStoppedComplete SyncStoppedReason = iota
	SyncStoppedCancelled
	SyncStoppedFailure
	SyncStoppedRequested
	SyncStoppedUnknown
)

// SubmitError is carried by a TxnSubmitted event (§7).
type SubmitError struct {
	Unknown bool
	Errno   int
}

// Event is the tagged union of every sync-manager event. Only the fields
// relevant to Kind are meaningful.
type Event struct {
	Kind Kind

	DisconnectReason  DisconnectReason
	SyncStoppedReason SyncStoppedReason
	Progress          float64 // percent, 0-100

	NetworkHeight int32

	TxHash      chainhash.Hash
	TxBytes     []byte
	SubmitError *SubmitError

	Blocks []*wire.BlockHeader
	Peers  []*wire.NetAddress

	Timestamp time.Time
}

// Connected constructs a Connected event.
func Connected() Event { return Event{Kind: KindConnected} }

// Disconnected constructs a Disconnected event.
func Disconnected(reason DisconnectReason) Event {
	return Event{Kind: KindDisconnected, DisconnectReason: reason}
}

// SyncStarted constructs a SyncStarted event.
func SyncStarted() Event { return Event{Kind: KindSyncStarted} }

// SyncProgress constructs a SyncProgress event carrying a 0-100 percent.
func SyncProgress(percent float64) Event {
	return Event{Kind: KindSyncProgress, Progress: percent}
}

// SyncStopped constructs a SyncStopped event.
func SyncStopped(reason SyncStoppedReason) Event {
	return Event{Kind: KindSyncStopped, SyncStoppedReason: reason}
}

// BlockHeightUpdated constructs a BlockHeightUpdated event.
func BlockHeightUpdated(height int32) Event {
	return Event{Kind: KindBlockHeightUpdated, NetworkHeight: height}
}

// TxnSubmitted constructs a TxnSubmitted event.
func TxnSubmitted(hash chainhash.Hash, submitErr *SubmitError) Event {
	return Event{Kind: KindTxnSubmitted, TxHash: hash, SubmitError: submitErr}
}

// SetBlocks constructs a SetBlocks event (replace the known block set).
func SetBlocks(blocks []*wire.BlockHeader) Event {
	return Event{Kind: KindSetBlocks, Blocks: blocks}
}

// AddBlocks constructs an AddBlocks event (merge into the known block set).
func AddBlocks(blocks []*wire.BlockHeader) Event {
	return Event{Kind: KindAddBlocks, Blocks: blocks}
}

// SetPeers constructs a SetPeers event.
func SetPeers(peers []*wire.NetAddress) Event {
	return Event{Kind: KindSetPeers, Peers: peers}
}

// AddPeers constructs an AddPeers event.
func AddPeers(peers []*wire.NetAddress) Event {
	return Event{Kind: KindAddPeers, Peers: peers}
}
