// Package config implements the outer configuration surface of §6
// ("Configuration options exposed to the outer system"), parsed with
// jessevdk/go-flags the way the teacher's cmd/kaspawallet config.go
// composes a shared NetworkFlags block into each subcommand's flags.
package config

import (
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/chainparams"
	"github.com/spvwallet/walletcore/syncmanager"
	"github.com/spvwallet/walletcore/walletmanager"
)

// NetworkFlags selects currency and network, mirroring the teacher's
// per-command Testnet/Simnet/Devnet toggles but generalized to this
// core's multi-currency, two-network (mainnet/testnet) model.
type NetworkFlags struct {
	Currency string `long:"currency" description:"Currency to sync (btc, bch)" default:"btc"`
	Testnet  bool   `long:"testnet" description:"Use the test network"`
}

// NetworkName returns "testnet" or "mainnet" per the Testnet flag.
func (n NetworkFlags) NetworkName() string {
	if n.Testnet {
		return "testnet"
	}
	return "mainnet"
}

// Params resolves NetworkFlags into a concrete chainparams.Params.
func (n NetworkFlags) Params() (*chainparams.Params, error) {
	return chainparams.ByCurrencyAndNetwork(n.Currency, n.NetworkName())
}

// Config is the full set of options of §6: mode, earliest key time,
// confirmation depth, reachability hint, a fixed-peer pin, and rescan
// depth, plus the ambient flags every subcommand shares.
type Config struct {
	NetworkFlags

	DataDir string `long:"datadir" description:"Directory to store wallet state" default:"~/.walletcore"`

	Mode string `long:"mode" description:"Sync mode: api or p2p" default:"api"`

	EarliestKeyTime int64 `long:"earliest-key-time" description:"Unix timestamp of the wallet's earliest possible key, used to pick the sync floor checkpoint"`

	ConfirmationsUntilFinal int32 `long:"confirmations-until-final" description:"Block depth at which a transfer is considered resolved" default:"6"`

	IsNetworkReachable bool `long:"network-reachable" description:"Hint that the network is currently reachable" default:"true"`

	FixedPeerAddress string `long:"fixed-peer" description:"Pin P2P mode to a single host:port instead of discovering peers"`

	RescanDepth string `long:"rescan-depth" description:"Rescan depth: last-confirmed-send, last-trusted-block, or creation" default:"last-trusted-block"`

	LogLevel string `long:"loglevel" description:"Logging level (trace, debug, info, warn, error, critical, off)" default:"info"`
}

// Parse parses os.Args into a Config, applying go-flags defaults and
// required-field validation (teacher's cmd/kaspawallet parseCommandLine
// pattern, without that file's multi-subcommand dispatch since this core
// exposes one daemon surface).
func Parse() (*Config, error) {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}
	return cfg, nil
}

// SyncMode translates the Mode flag into a syncmanager.Mode.
func (c *Config) SyncMode() (syncmanager.Mode, error) {
	switch c.Mode {
	case "api":
		return syncmanager.ApiOnly, nil
	case "p2p":
		return syncmanager.P2POnly, nil
	default:
		return 0, errors.Errorf("config: unknown mode %q, want \"api\" or \"p2p\"", c.Mode)
	}
}

// Depth translates the RescanDepth flag into a walletmanager.Depth.
func (c *Config) Depth() (walletmanager.Depth, error) {
	switch c.RescanDepth {
	case "last-confirmed-send":
		return walletmanager.DepthFromLastConfirmedSend, nil
	case "last-trusted-block":
		return walletmanager.DepthFromLastTrustedBlock, nil
	case "creation":
		return walletmanager.DepthFromCreation, nil
	default:
		return 0, errors.Errorf("config: unknown rescan depth %q", c.RescanDepth)
	}
}

// EarliestKeyTimestamp returns EarliestKeyTime as a time.Time.
func (c *Config) EarliestKeyTimestamp() time.Time {
	return time.Unix(c.EarliestKeyTime, 0).UTC()
}
