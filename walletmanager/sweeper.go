package walletmanager

import (
	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncmanager"
)

// SweepErrorKind is the WalletSweeperError taxonomy of §7.
type SweepErrorKind int

const (
	SweepSuccess SweepErrorKind = iota
	SweepInvalidTransaction
	SweepInvalidSourceWallet
	SweepNoTransactionsFound
	SweepInsufficientFunds
	SweepUnableToSweep
)

// SweepError carries a SweepErrorKind plus a human-readable cause.
type SweepError struct {
	Kind  SweepErrorKind
	cause error
}

func (e *SweepError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return "wallet sweeper error"
}

func sweepErr(kind SweepErrorKind, format string, args ...interface{}) *SweepError {
	return &SweepError{Kind: kind, cause: errors.Errorf(format, args...)}
}

// dustFloorPerKb is the minimum fee rate, in satoshis per kilobyte, that
// feeForSize applies: a caller's lower feePerKb is raised to this rate.
const dustFloorPerKb = 1000

// minOutputAmount is the smallest sweep output allowed: BuildSweepTransaction
// fails with SweepInsufficientFunds unless the swept total exceeds the fee
// plus this amount.
const minOutputAmount = 546

// SourceTransaction is one externally-supplied transaction paying (or
// spending from) the sweep source address (§4.3.3 step 2).
type SourceTransaction struct {
	Hash    chainhash.Hash
	Outputs []SourceOutput // outputs of this transaction paying the source address
	Inputs  []chainhash.OutPoint
}

// SourceOutput is a single output of a SourceTransaction that pays the
// sweep source address.
type SourceOutput struct {
	Index  uint32
	Amount uint64
}

// Sweeper scans a set of externally-supplied transactions paying a given
// source address and builds a single transaction moving every resulting
// UTXO into the wallet (§4.3.3).
//
// Grounded on original_source/bitcoin/BRWalletManager.c's sweep-context
// pattern (derive UTXOs from supplied transactions, then construct one
// sweep transaction on demand), reworked from its manual malloc'd UTXO
// array into a plain slice built by set-difference over the outputs and
// inputs touching the source address.
type Sweeper struct {
	wallet        Wallet
	sourceAddress syncmanager.Address
}

// NewSweeper validates that wallet does not already control sourceAddress
// (§4.3.3 step 1) and returns a Sweeper, or a SweepInvalidSourceWallet
// error.
func NewSweeper(wallet Wallet, sourceAddress syncmanager.Address) (*Sweeper, error) {
	if wallet.ControlsAddress(sourceAddress) {
		return nil, sweepErr(SweepInvalidSourceWallet, "wallet already controls address %s", sourceAddress)
	}
	return &Sweeper{wallet: wallet, sourceAddress: sourceAddress}, nil
}

// UTXOs derives the sweep source's unspent outputs from txs: adds every
// output paying the source address, then removes every output later spent
// by one of txs' inputs (§4.3.3 step 2).
func UTXOs(txs []SourceTransaction) ([]UTXO, error) {
	if len(txs) == 0 {
		return nil, sweepErr(SweepNoTransactionsFound, "no transactions supplied")
	}

	candidates := make(map[chainhash.OutPoint]uint64)
	for _, tx := range txs {
		for _, out := range tx.Outputs {
			candidates[chainhash.OutPoint{Hash: tx.Hash, Index: out.Index}] = out.Amount
		}
	}
	for _, tx := range txs {
		for _, in := range tx.Inputs {
			delete(candidates, in)
		}
	}

	if len(candidates) == 0 {
		return nil, sweepErr(SweepNoTransactionsFound, "source address has no unspent outputs")
	}

	utxos := make([]UTXO, 0, len(candidates))
	for op, amount := range candidates {
		utxos = append(utxos, UTXO{Hash: op.Hash, Index: op.Index, Amount: amount})
	}
	return utxos, nil
}

// SweepTransaction is the constructed single-transaction sweep of §4.3.3
// step 3: opaque bytes plus the accounting the caller needs to sign and
// broadcast it.
type SweepTransaction struct {
	Inputs       []UTXO
	OutputAmount uint64
	Fee          uint64
	Destination  syncmanager.Address
}

// BuildSweepTransaction constructs a sweep spending every UTXO in utxos to
// a fresh wallet receive address, charging a fee computed from
// virtualSizeBytes and feePerKb with the dust-derived floor of §4.3.3.
func (s *Sweeper) BuildSweepTransaction(utxos []UTXO, feePerKb uint64, virtualSizeBytes int) (*SweepTransaction, error) {
	if len(utxos) == 0 {
		return nil, sweepErr(SweepNoTransactionsFound, "no UTXOs to sweep")
	}

	var total uint64
	for _, u := range utxos {
		total += u.Amount
	}

	fee := feeForSize(feePerKb, virtualSizeBytes)
	if total <= fee+minOutputAmount {
		return nil, sweepErr(SweepInsufficientFunds, "balance %d insufficient for fee %d plus minimum output %d", total, fee, minOutputAmount)
	}

	return &SweepTransaction{
		Inputs:       utxos,
		OutputAmount: total - fee,
		Fee:          fee,
		Destination:  s.wallet.NewReceiveAddress(),
	}, nil
}

// feeForSize applies the minimum-output-derived fee floor: a sweep never
// charges less than it would cost to relay virtualSizeBytes at
// dustFloorPerKb, even if the caller's feePerKb is lower.
func feeForSize(feePerKb uint64, virtualSizeBytes int) uint64 {
	rate := feePerKb
	if rate < dustFloorPerKb {
		rate = dustFloorPerKb
	}
	fee := rate * uint64(virtualSizeBytes) / 1000
	if fee == 0 {
		fee = 1
	}
	return fee
}
