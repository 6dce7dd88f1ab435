// Package walletmanager implements the outer coordinator of spec.md §4.3:
// it owns the wallet, the file service, the sync manager, and a
// single-threaded cooperative event loop that mediates between them and
// the user-facing callback surface.
//
// Grounded on the teacher's app/ (ChainedFlow / server event loop) single
// dispatcher-goroutine pattern and on original_source/bitcoin/
// BRWalletManager.c and original_source/crypto/BRCryptoWalletManagerClient.c
// for the initialization contract and callback taxonomy, re-expressed per
// the REDESIGN FLAGS (spec.md §9): the recursive pthread_mutex becomes a
// non-recursive sync.Mutex plus an enqueue-only discipline for any call
// arriving from a non-loop goroutine.
package walletmanager

import (
	"time"

	"github.com/spvwallet/walletcore/transferledger"
)

// WalletEventKind tags the variant of a WalletEvent.
type WalletEventKind int

const (
	KindWalletCreated WalletEventKind = iota
	KindWalletDeleted
	KindBalanceUpdated
	KindTransactionAdded
	KindTransactionUpdated
	KindTransactionDeleted
	KindFeeEstimated
	KindSyncEvent
)

// WalletEvent is the tagged union of every event the wallet manager
// delivers to the outer, user-facing layer (§4.3, §5 "Ordering
// guarantees"). Field relevance depends on Kind.
type WalletEvent struct {
	Kind WalletEventKind

	Balance uint64

	Transfer *transferledger.TrackedTransfer

	BlockHeight int32
	Timestamp   time.Time

	FeeCookie    uint64
	FeePerKb     uint64
	SizeInBytes  int

	Raw interface{} // set iff Kind == KindSyncEvent; a syncevent.Event
}

// WalletCreated constructs the event that must strictly precede all other
// events for a wallet (§5 "Ordering guarantees").
func WalletCreated() WalletEvent { return WalletEvent{Kind: KindWalletCreated} }

// WalletDeleted constructs the event that must strictly succeed every
// other event for a wallet.
func WalletDeleted() WalletEvent { return WalletEvent{Kind: KindWalletDeleted} }

// BalanceUpdated constructs a balance-change notification.
func BalanceUpdated(balance uint64) WalletEvent {
	return WalletEvent{Kind: KindBalanceUpdated, Balance: balance}
}

// TransactionAdded constructs the event fired on first sighting of a
// transfer, per the Created->Changed*->Deleted? ordering of §5.
func TransactionAdded(tt *transferledger.TrackedTransfer) WalletEvent {
	return WalletEvent{Kind: KindTransactionAdded, Transfer: tt}
}

// TransactionUpdated constructs a Changed event carrying the transfer's
// current height/timestamp (e.g. inclusion, reorg).
func TransactionUpdated(tt *transferledger.TrackedTransfer, height int32, timestamp time.Time) WalletEvent {
	return WalletEvent{Kind: KindTransactionUpdated, Transfer: tt, BlockHeight: height, Timestamp: timestamp}
}

// TransactionDeleted constructs the terminal event for a transfer.
func TransactionDeleted(tt *transferledger.TrackedTransfer) WalletEvent {
	return WalletEvent{Kind: KindTransactionDeleted, Transfer: tt}
}

// FeeEstimated constructs the asynchronous reply to estimateFee (§4.3).
func FeeEstimated(cookie uint64, feePerKb uint64, sizeInBytes int) WalletEvent {
	return WalletEvent{Kind: KindFeeEstimated, FeeCookie: cookie, FeePerKb: feePerKb, SizeInBytes: sizeInBytes}
}

// SyncRaw wraps a syncevent.Event for delivery through the same queue,
// keeping one ordered pipe into user code instead of two racing ones.
func SyncRaw(raw interface{}) WalletEvent {
	return WalletEvent{Kind: KindSyncEvent, Raw: raw}
}
