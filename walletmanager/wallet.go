package walletmanager

import (
	"time"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncmanager"
	"github.com/spvwallet/walletcore/transferledger"
)

// TxSnapshot is one entry of the wallet's transaction list at
// initialization time (§4.3 "Construct the wallet from loaded
// transactions" then "Populate the tracked-transfer ledger").
type TxSnapshot struct {
	Tx       transferledger.OwnedTx
	Resolved bool
}

// UTXO is a single unspent output the sweeper consumes (§4.3.3).
type UTXO struct {
	Hash   chainhash.Hash
	Index  uint32
	Amount uint64
}

// Wallet is the subset of wallet behavior the wallet manager consumes,
// layered on top of the narrower syncmanager.Wallet the sync algorithm
// itself needs. Everything else — balance math, derivation, UTXO
// selection, signing — is out of scope (§1) and lives entirely on the
// concrete implementation supplied by the embedding application.
type Wallet interface {
	syncmanager.Wallet

	Balance() uint64
	Transactions() []TxSnapshot
	RegisterCallbacks(cb Callbacks)

	// ControlsAddress reports whether addr already belongs to this wallet,
	// used by the sweeper's InvalidSourceWallet check (§4.3.3).
	ControlsAddress(addr syncmanager.Address) bool
	// NewReceiveAddress returns a fresh wallet address to receive swept
	// funds.
	NewReceiveAddress() syncmanager.Address
}

// Callbacks is implemented by the wallet manager and registered with the
// wallet. Every method arrives on whatever thread caused the underlying
// mutation and must never block on or acquire the wallet manager's lock —
// it only enqueues work onto the event loop (§5 "Wallet's callbacks").
type Callbacks interface {
	OnBalanceChanged(balance uint64)
	OnTransactionAdded(tx transferledger.OwnedTx)
	OnTransactionUpdated(hash chainhash.Hash, height int32, timestamp time.Time, confirmedFeeBasis uint64)
	OnTransactionDeleted(hash chainhash.Hash)
}
