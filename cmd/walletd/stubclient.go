package main

import (
	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/syncevent"
	"github.com/spvwallet/walletcore/syncmanager"
)

// dryRunClient is a placeholder ClientCallbacks that answers every
// request immediately with "no data", demonstrating the sync manager's
// event flow without a live BRD-style indexer behind it. An embedding
// application supplies a real HTTP-backed ClientCallbacks in its place.
type dryRunClient struct {
	manager *syncmanager.Manager
	height  int32
}

func (c *dryRunClient) GetBlockNumber(requestID uint64) {
	c.manager.AnnounceGetBlockNumber(c.height)
}

func (c *dryRunClient) GetTransactions(addresses []syncmanager.Address, begHeight, endHeight int32, requestID uint64) {
	c.manager.AnnounceGetTransactionsDone(requestID, true)
}

func (c *dryRunClient) SubmitTransaction(txBytes []byte, txHash chainhash.Hash, requestID uint64) {
	c.manager.AnnounceSubmitTransaction(requestID, &syncevent.SubmitError{Unknown: true})
}
