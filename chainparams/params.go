// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainparams defines per-network identity: magic numbers, DNS
// seeds, checkpoints, and the proof-of-work limit, the way dagconfig.Params
// defines a kaspad network — generalized here to the single-chain
// Bitcoin/Bitcoin-Cash shape this core targets.
package chainparams

import (
	"sort"
	"time"

	"github.com/spvwallet/walletcore/chainhash"
)

// ForkID distinguishes networks that share UTXO/transaction shape but
// diverge in consensus rules (e.g. Bitcoin vs Bitcoin Cash).
type ForkID uint8

const (
	ForkBTC ForkID = iota
	ForkBCH
)

// Checkpoint pins a known-good block, used both to bound how far back a
// sync needs to scan and to sanity-check the header chain.
type Checkpoint struct {
	Height    int32
	Hash      chainhash.Hash
	Timestamp time.Time
	Bits      uint32
}

// Params defines a single network (e.g. "btc"/"mainnet").
type Params struct {
	// Currency is the short ticker used in the storage path ("btc", "bch").
	Currency string
	// Name is the human-readable network name ("mainnet", "testnet").
	Name string
	// Net is the magic number prefixing every wire message.
	Net uint32
	// DefaultPort is the network's standard P2P port.
	DefaultPort string
	// DNSSeeds lists hostnames used for peer discovery.
	DNSSeeds []string
	// Services is the node-services bitmask this network's peers
	// are expected to advertise.
	Services uint64
	// Fork identifies which consensus-rule family this network follows.
	Fork ForkID
	// PowLimitBits is the compact encoding of the highest (easiest)
	// proof-of-work target allowed.
	PowLimitBits uint32
	// PubKeyHashAddrID and ScriptHashAddrID are the address-encoding
	// version bytes. Nothing in the core encodes or decodes addresses;
	// these are recorded for an embedding application's address codec.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte

	// Checkpoints must be sorted by ascending Height.
	Checkpoints []Checkpoint
}

// CheckpointBefore returns the latest checkpoint whose timestamp is <= t,
// or nil if t predates every checkpoint. No code in this module calls it;
// the sync managers do not derive a floor height from it.
func (p *Params) CheckpointBefore(t time.Time) *Checkpoint {
	var best *Checkpoint
	for i := range p.Checkpoints {
		cp := &p.Checkpoints[i]
		if !cp.Timestamp.After(t) {
			best = cp
		}
	}
	return best
}

// sortCheckpoints sorts the params' checkpoint list by height; called from
// this package's init for the built-in network checkpoint lists.
func sortCheckpoints(checkpoints []Checkpoint) {
	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].Height < checkpoints[j].Height
	})
}
