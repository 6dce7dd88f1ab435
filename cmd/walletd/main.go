// Command walletd is the daemon entry point of the Module Map's cmd/walletd
// entry: it parses configuration, opens the per-network wallet manager,
// and drives its event loop until signalled to stop.
//
// Grounded on the teacher's cmd/kaspactl main.go for the "parse config,
// build a client/manager, run until signal" shape, generalized from a
// one-shot RPC command to a long-running daemon.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spvwallet/walletcore/config"
	"github.com/spvwallet/walletcore/logger"
	"github.com/spvwallet/walletcore/syncmanager"
	"github.com/spvwallet/walletcore/walletmanager"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "walletd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	logDir := filepath.Join(cfg.DataDir, "logs")
	logger.InitLogRotators(filepath.Join(logDir, "walletd.log"), filepath.Join(logDir, "walletd_err.log"))
	logger.SetLogLevels(cfg.LogLevel)
	log, err := logger.Get(logger.SubsystemTags.WALD)
	if err != nil {
		return err
	}

	mode, err := cfg.SyncMode()
	if err != nil {
		return err
	}
	if mode != syncmanager.ApiOnly {
		return fmt.Errorf("walletd: P2P mode requires an embedding application's peer manager; this binary demonstrates API mode only")
	}

	wallet := &stubWallet{}
	client := &dryRunClient{}

	wm, err := walletmanager.Open(walletmanager.Config{
		StorageRoot:             cfg.DataDir,
		Currency:                cfg.Currency,
		Network:                 cfg.NetworkName(),
		Mode:                    mode,
		EarliestKeyTime:         int32(cfg.EarliestKeyTime),
		ConfirmationsUntilFinal: cfg.ConfirmationsUntilFinal,
		ClientCallbacks:         client,
		Deliver: func(e walletmanager.WalletEvent) {
			log.Infof("event: kind=%d", e.Kind)
		},
	}, wallet)
	if err != nil {
		return err
	}
	defer wm.Close()

	client.manager = wm.SyncManager()
	wm.Connect()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	wm.Disconnect()
	return nil
}
