package main

import (
	"github.com/spvwallet/walletcore/syncmanager"
	"github.com/spvwallet/walletcore/transferledger"
	"github.com/spvwallet/walletcore/walletmanager"
)

// stubWallet is a placeholder implementation of walletmanager.Wallet with
// no addresses and no transactions. The wallet object itself — balance
// math, address derivation, UTXO selection, signing — is outside this
// core's scope (spec §1); an embedding application supplies its own
// implementation and passes it to walletmanager.Open in place of this
// stand-in. stubWallet exists only so walletd has something concrete to
// wire up and demonstrate the event loop against.
type stubWallet struct {
	callbacks walletmanager.Callbacks
}

func (w *stubWallet) UnusedAddressWindow(gapLimit int) (external, internal []syncmanager.Address, firstUnusedExternal, firstUnusedInternal syncmanager.Address) {
	return nil, nil, "", ""
}

func (w *stubWallet) AllAddresses() []syncmanager.Address { return nil }

func (w *stubWallet) RegisterTransaction(tx syncmanager.TxAnnouncement) (bool, interface{}) {
	if w.callbacks != nil {
		w.callbacks.OnTransactionAdded(transferledger.OwnedTx{
			Hash:        tx.Hash,
			Bytes:       tx.Bytes,
			Signed:      tx.Signed,
			BlockHeight: tx.BlockHeight,
			Timestamp:   tx.Timestamp,
		})
	}
	return true, tx.Hash
}

func (w *stubWallet) Balance() uint64 { return 0 }

func (w *stubWallet) Transactions() []walletmanager.TxSnapshot { return nil }

func (w *stubWallet) RegisterCallbacks(cb walletmanager.Callbacks) { w.callbacks = cb }

func (w *stubWallet) ControlsAddress(addr syncmanager.Address) bool { return false }

func (w *stubWallet) NewReceiveAddress() syncmanager.Address { return "" }
