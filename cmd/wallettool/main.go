// Command wallettool is an offline utility exposing the Wallet Sweeper
// (spec.md §4.3.3) as a standalone CLI: given a destination address and a
// JSON description of transactions paying a lost/external source address,
// it derives the UTXO set and prints the sweep transaction's accounting.
//
// Grounded on the teacher's cmd/kaspawallet send.go for the "parse flags,
// build a transaction, print the result" shape; go-flags for the flag
// surface matches cmd/kaspawallet/config.go.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncmanager"
	"github.com/spvwallet/walletcore/walletmanager"
)

type options struct {
	SourceAddress string  `long:"source-address" short:"s" description:"The address being swept" required:"true"`
	DestAddress   string  `long:"dest-address" short:"d" description:"The wallet address to receive swept funds" required:"true"`
	TxFile        string  `long:"tx-file" short:"f" description:"JSON file describing the source address's transactions" required:"true"`
	FeePerKb      uint64  `long:"fee-per-kb" description:"Fee rate in satoshis per kilobyte" default:"10000"`
	VirtualSize   int     `long:"virtual-size" description:"Estimated virtual size in bytes of the sweep transaction" default:"250"`
}

// jsonOutput is one output of a jsonTransaction; --tx-file holds a JSON
// array of jsonTransaction, one entry per transaction touching the source
// address.
type jsonOutput struct {
	Index  uint32 `json:"index"`
	Amount uint64 `json:"amount"`
}

type jsonInput struct {
	TxHash string `json:"txHash"`
	Index  uint32 `json:"index"`
}

type jsonTransaction struct {
	Hash    string      `json:"hash"`
	Outputs []jsonOutput `json:"outputs"`
	Inputs  []jsonInput  `json:"inputs"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wallettool:", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		return err
	}

	raw, err := os.ReadFile(opts.TxFile)
	if err != nil {
		return err
	}
	var jsonTxs []jsonTransaction
	if err := json.Unmarshal(raw, &jsonTxs); err != nil {
		return err
	}

	txs, err := decodeTransactions(jsonTxs)
	if err != nil {
		return err
	}

	utxos, err := walletmanager.UTXOs(txs)
	if err != nil {
		return err
	}

	wallet := &fixedDestWallet{dest: syncmanager.Address(opts.DestAddress)}
	sweeper, err := walletmanager.NewSweeper(wallet, syncmanager.Address(opts.SourceAddress))
	if err != nil {
		return err
	}

	swept, err := sweeper.BuildSweepTransaction(utxos, opts.FeePerKb, opts.VirtualSize)
	if err != nil {
		return err
	}

	fmt.Printf("inputs: %d\n", len(swept.Inputs))
	fmt.Printf("output amount: %d\n", swept.OutputAmount)
	fmt.Printf("fee: %d\n", swept.Fee)
	fmt.Printf("destination: %s\n", swept.Destination)
	return nil
}

func decodeTransactions(jsonTxs []jsonTransaction) ([]walletmanager.SourceTransaction, error) {
	txs := make([]walletmanager.SourceTransaction, 0, len(jsonTxs))
	for _, jtx := range jsonTxs {
		hash, err := chainhash.NewFromStr(jtx.Hash)
		if err != nil {
			return nil, err
		}
		tx := walletmanager.SourceTransaction{Hash: *hash}
		for _, o := range jtx.Outputs {
			tx.Outputs = append(tx.Outputs, walletmanager.SourceOutput{Index: o.Index, Amount: o.Amount})
		}
		for _, in := range jtx.Inputs {
			inHash, err := chainhash.NewFromStr(in.TxHash)
			if err != nil {
				return nil, err
			}
			tx.Inputs = append(tx.Inputs, chainhash.OutPoint{Hash: *inHash, Index: in.Index})
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// fixedDestWallet is the minimal walletmanager.Wallet this offline tool
// needs: it controls nothing (so NewSweeper's source check always passes)
// and hands out a single fixed destination address.
type fixedDestWallet struct {
	dest syncmanager.Address
}

func (w *fixedDestWallet) UnusedAddressWindow(gapLimit int) (external, internal []syncmanager.Address, firstUnusedExternal, firstUnusedInternal syncmanager.Address) {
	return nil, nil, "", ""
}
func (w *fixedDestWallet) AllAddresses() []syncmanager.Address { return nil }
func (w *fixedDestWallet) RegisterTransaction(tx syncmanager.TxAnnouncement) (bool, interface{}) {
	return true, nil
}
func (w *fixedDestWallet) Balance() uint64                        { return 0 }
func (w *fixedDestWallet) Transactions() []walletmanager.TxSnapshot { return nil }
func (w *fixedDestWallet) RegisterCallbacks(cb walletmanager.Callbacks) {}
func (w *fixedDestWallet) ControlsAddress(addr syncmanager.Address) bool { return false }
func (w *fixedDestWallet) NewReceiveAddress() syncmanager.Address        { return w.dest }
