// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainparams

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/pow"
)

func mustHash(s string) chainhash.Hash {
	h, err := chainhash.NewFromStr(s)
	if err != nil {
		panic(err)
	}
	return *h
}

// BTCMainnetParams defines the network parameters for Bitcoin mainnet.
var BTCMainnetParams = Params{
	Currency:         "btc",
	Name:             "mainnet",
	Net:              0xd9b4bef9,
	DefaultPort:      "8333",
	DNSSeeds:         []string{"seed.bitcoin.sipa.be", "dnsseed.bluematt.me"},
	Services:         1,
	Fork:             ForkBTC,
	PowLimitBits:      pow.MaxProofOfWorkBits,
	PubKeyHashAddrID: 0x00,
	ScriptHashAddrID: 0x05,
	Checkpoints: []Checkpoint{
		{Height: 11111, Hash: mustHash("0000000069e244f73d78e8fd29ba2fd2ed618bd6fa2ee92559f542fdb26e7c1d"), Timestamp: time.Unix(1317972665, 0).UTC(), Bits: 0x1d00ffff},
		{Height: 33333, Hash: mustHash("000000002dd5588a74784eaa7ab0507a18ad16a236e7b1ce69f00d7ddfb5d0a6"), Timestamp: time.Unix(1330611911, 0).UTC(), Bits: 0x1d00ffff},
		{Height: 111111, Hash: mustHash("0000000000000345c04f8d2a5dd1ad9be6a74c0c72f7c5a91742f9a1caeaca8d"), Timestamp: time.Unix(1351603682, 0).UTC(), Bits: 0x1a0d2c0a},
	},
}

// BTCTestnetParams defines the network parameters for Bitcoin testnet3.
var BTCTestnetParams = Params{
	Currency:         "btc",
	Name:             "testnet",
	Net:              0x0709110b,
	DefaultPort:      "18333",
	DNSSeeds:         []string{"testnet-seed.bitcoin.jonasschnelli.ch"},
	Services:         1,
	Fork:             ForkBTC,
	PowLimitBits:      0x1d00ffff,
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
}

// BCHMainnetParams defines the network parameters for Bitcoin Cash mainnet.
var BCHMainnetParams = Params{
	Currency:         "bch",
	Name:             "mainnet",
	Net:              0xe8f3e1e3,
	DefaultPort:      "8333",
	DNSSeeds:         []string{"seed.bitcoinabc.org", "seed-abc.bitcoinforks.org"},
	Services:         1,
	Fork:             ForkBCH,
	PowLimitBits:      pow.MaxProofOfWorkBits,
	PubKeyHashAddrID: 0x00,
	ScriptHashAddrID: 0x05,
}

// BCHTestnetParams defines the network parameters for Bitcoin Cash testnet.
var BCHTestnetParams = Params{
	Currency:         "bch",
	Name:             "testnet",
	Net:              0xf4f3e5f4,
	DefaultPort:      "18333",
	DNSSeeds:         []string{"testnet-seed.bitcoinabc.org"},
	Services:         1,
	Fork:             ForkBCH,
	PowLimitBits:      0x1d00ffff,
	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
}

func init() {
	sortCheckpoints(BTCMainnetParams.Checkpoints)
}

// ByCurrencyAndNetwork looks up one of the built-in params by its storage
// path components ("btc"/"mainnet", etc).
func ByCurrencyAndNetwork(currency, network string) (*Params, error) {
	for _, p := range []*Params{&BTCMainnetParams, &BTCTestnetParams, &BCHMainnetParams, &BCHTestnetParams} {
		if p.Currency == currency && p.Name == network {
			return p, nil
		}
	}
	return nil, errors.Errorf("chainparams: unknown network %s/%s", currency, network)
}
