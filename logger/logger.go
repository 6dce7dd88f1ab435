// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
	"github.com/spvwallet/walletcore/logs"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	if initiated {
		os.Stdout.Write(p)
		LogRotator.Write(p)
	}
	return len(p), nil
}

// errLogWriter implements an io.Writer that outputs to both standard output
// and the write-end pipe of an initialized error log rotator.
type errLogWriter struct{}

func (errLogWriter) Write(p []byte) (n int, err error) {
	if initiated {
		os.Stdout.Write(p)
		ErrLogRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem. A single backend logger is created and all
// subsystem loggers created from it write to the backend. When adding a new
// subsystem, add the tag here and to the subsystemLoggers map.
var (
	backendLog = logs.NewBackend([]*logs.BackendWriter{
		logs.NewAllLevelsBackendWriter(logWriter{}),
		logs.NewErrorBackendWriter(errLogWriter{}),
	})

	// LogRotator and ErrLogRotator are the logging outputs; both must be
	// closed on application shutdown.
	LogRotator    *rotator.Rotator
	ErrLogRotator *rotator.Rotator

	initiated = false
)

// SubsystemTags is an enum of all subsystem tags used by the core.
var SubsystemTags = struct {
	WMGR, // wallet manager event loop
	SYNC, // sync manager (both modes)
	MRKL, // merkle block engine
	FSVC, // file-service adapter
	XFER, // transfer-state ledger
	AMGR, // address manager / peer book
	SWEP, // wallet sweeper
	CNFG, // configuration
	WALD string // cmd/walletd
}{
	WMGR: "WMGR",
	SYNC: "SYNC",
	MRKL: "MRKL",
	FSVC: "FSVC",
	XFER: "XFER",
	AMGR: "AMGR",
	SWEP: "SWEP",
	CNFG: "CNFG",
	WALD: "WALD",
}

var subsystemLoggers = map[string]logs.Logger{}

func init() {
	for _, tag := range []string{
		SubsystemTags.WMGR, SubsystemTags.SYNC, SubsystemTags.MRKL,
		SubsystemTags.FSVC, SubsystemTags.XFER, SubsystemTags.AMGR,
		SubsystemTags.SWEP, SubsystemTags.CNFG, SubsystemTags.WALD,
	} {
		subsystemLoggers[tag] = backendLog.Logger(tag)
	}
}

// Get returns the logger registered for subsystemID, or an error if the tag
// is not a recognized subsystem.
func Get(subsystemID string) (logs.Logger, error) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return logs.Logger{}, fmt.Errorf("unrecognized subsystem tag %q", subsystemID)
	}
	return logger, nil
}

// InitLogRotators initializes the rotating log outputs. It must be called
// before any subsystem logger is used so that log lines are not dropped.
func InitLogRotators(logFile, errLogFile string) {
	initiated = true
	LogRotator = initLogRotator(logFile)
	ErrLogRotator = initLogRotator(errLogFile)
}

func initLogRotator(logFile string) *rotator.Rotator {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %s\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %s\n", err)
		os.Exit(1)
	}
	return r
}

// SetLogLevel sets the logging level for the given subsystem. Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := logs.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for every subsystem logger.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}
