package walletmanager

import (
	"testing"

	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncmanager"
)

type fakeSweepWallet struct {
	controlled map[syncmanager.Address]bool
	receive    syncmanager.Address
}

func (w *fakeSweepWallet) UnusedAddressWindow(gapLimit int) ([]syncmanager.Address, []syncmanager.Address, syncmanager.Address, syncmanager.Address) {
	return nil, nil, "", ""
}
func (w *fakeSweepWallet) AllAddresses() []syncmanager.Address { return nil }
func (w *fakeSweepWallet) RegisterTransaction(tx syncmanager.TxAnnouncement) (bool, interface{}) {
	return true, nil
}
func (w *fakeSweepWallet) Balance() uint64             { return 0 }
func (w *fakeSweepWallet) Transactions() []TxSnapshot  { return nil }
func (w *fakeSweepWallet) RegisterCallbacks(cb Callbacks) {}
func (w *fakeSweepWallet) ControlsAddress(addr syncmanager.Address) bool {
	return w.controlled[addr]
}
func (w *fakeSweepWallet) NewReceiveAddress() syncmanager.Address { return w.receive }

func TestNewSweeperRejectsControlledAddress(t *testing.T) {
	wallet := &fakeSweepWallet{controlled: map[syncmanager.Address]bool{"addrA": true}}
	_, err := NewSweeper(wallet, "addrA")
	if err == nil {
		t.Fatal("expected InvalidSourceWallet error")
	}
	if swErr, ok := err.(*SweepError); !ok || swErr.Kind != SweepInvalidSourceWallet {
		t.Fatalf("expected SweepInvalidSourceWallet, got %+v", err)
	}
}

func TestUTXOsSubtractsSpentOutputs(t *testing.T) {
	fundHash := chainhash.DoubleHashH([]byte("fund"))
	spendHash := chainhash.DoubleHashH([]byte("spend"))

	txs := []SourceTransaction{
		{
			Hash: fundHash,
			Outputs: []SourceOutput{
				{Index: 0, Amount: 1000},
				{Index: 1, Amount: 2000},
			},
		},
		{
			Hash:   spendHash,
			Inputs: []chainhash.OutPoint{{Hash: fundHash, Index: 0}},
		},
	}

	utxos, err := UTXOs(txs)
	if err != nil {
		t.Fatalf("UTXOs failed: %v", err)
	}
	if len(utxos) != 1 || utxos[0].Amount != 2000 {
		t.Errorf("expected single remaining UTXO of 2000, got %+v", utxos)
	}
}

func TestUTXOsNoTransactions(t *testing.T) {
	_, err := UTXOs(nil)
	if err == nil {
		t.Fatal("expected NoTransactionsFound error")
	}
	if swErr, ok := err.(*SweepError); !ok || swErr.Kind != SweepNoTransactionsFound {
		t.Fatalf("expected SweepNoTransactionsFound, got %+v", err)
	}
}

func TestBuildSweepTransactionInsufficientFunds(t *testing.T) {
	wallet := &fakeSweepWallet{controlled: map[syncmanager.Address]bool{}, receive: "addrB"}
	s, err := NewSweeper(wallet, "addrA")
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}

	utxos := []UTXO{{Hash: chainhash.DoubleHashH([]byte("x")), Index: 0, Amount: 100}}
	_, err = s.BuildSweepTransaction(utxos, 1000, 250)
	if err == nil {
		t.Fatal("expected InsufficientFunds error")
	}
	if swErr, ok := err.(*SweepError); !ok || swErr.Kind != SweepInsufficientFunds {
		t.Fatalf("expected SweepInsufficientFunds, got %+v", err)
	}
}

func TestBuildSweepTransactionSucceeds(t *testing.T) {
	wallet := &fakeSweepWallet{controlled: map[syncmanager.Address]bool{}, receive: "addrB"}
	s, err := NewSweeper(wallet, "addrA")
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}

	utxos := []UTXO{{Hash: chainhash.DoubleHashH([]byte("x")), Index: 0, Amount: 100000}}
	swept, err := s.BuildSweepTransaction(utxos, 10000, 250)
	if err != nil {
		t.Fatalf("BuildSweepTransaction failed: %v", err)
	}
	if swept.OutputAmount+swept.Fee != 100000 {
		t.Errorf("outputs + fee must equal total input amount: got %d + %d", swept.OutputAmount, swept.Fee)
	}
	if swept.Destination != "addrB" {
		t.Errorf("expected destination addrB, got %s", swept.Destination)
	}
}
