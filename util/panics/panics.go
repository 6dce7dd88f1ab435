// Package panics provides goroutine wrappers that recover, log, and
// terminate cleanly instead of crashing the process silently.
package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spvwallet/walletcore/logs"
)

// HandlePanic recovers a panic, logs it with the given goroutine stack
// trace, and exits the process. Intended to be deferred at the top of every
// goroutine the core spawns.
func HandlePanic(log logs.Logger, goroutineStackTrace []byte) {
	err := recover()
	if err == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		log.Criticalf("Fatal error: %+v", err)
		if goroutineStackTrace != nil {
			log.Criticalf("Goroutine stack trace: %s", goroutineStackTrace)
		}
		log.Criticalf("Stack trace: %s", debug.Stack())
		log.Backend().Close()
		close(done)
	}()

	const panicHandlerTimeout = 5 * time.Second
	select {
	case <-time.After(panicHandlerTimeout):
		fmt.Fprintln(os.Stderr, "couldn't handle a fatal error, exiting")
	case <-done:
	}
	os.Exit(1)
}

// GoroutineWrapperFunc returns a function that spawns f in a goroutine
// guarded by HandlePanic.
func GoroutineWrapperFunc(log logs.Logger) func(func()) {
	return func(f func()) {
		stackTrace := debug.Stack()
		go func() {
			defer HandlePanic(log, stackTrace)
			f()
		}()
	}
}

// AfterFuncWrapperFunc returns a time.AfterFunc wrapper that recovers panics
// in the scheduled function via HandlePanic.
func AfterFuncWrapperFunc(log logs.Logger) func(d time.Duration, f func()) *time.Timer {
	return func(d time.Duration, f func()) *time.Timer {
		stackTrace := debug.Stack()
		return time.AfterFunc(d, func() {
			defer HandlePanic(log, stackTrace)
			f()
		})
	}
}
