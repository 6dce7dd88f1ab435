// Package locks provides small synchronization primitives used by the
// wallet manager's event loop.
package locks

import (
	"sync"
	"sync/atomic"
)

// WaitGroup is a sync.WaitGroup-alike counter with Add, Done and Wait. It
// has no method that reports whether the counter is currently zero.
type WaitGroup struct {
	counter  int64
	waitCond *sync.Cond
}

// NewWaitGroup constructs an empty WaitGroup.
func NewWaitGroup() *WaitGroup {
	return &WaitGroup{waitCond: sync.NewCond(&sync.Mutex{})}
}

// Add increments the counter.
func (wg *WaitGroup) Add() {
	atomic.AddInt64(&wg.counter, 1)
}

// Done decrements the counter and wakes any waiter once it reaches zero.
func (wg *WaitGroup) Done() {
	counter := atomic.AddInt64(&wg.counter, -1)
	if counter < 0 {
		panic("locks: Done called before Add")
	}
	if counter == 0 {
		wg.waitCond.L.Lock()
		wg.waitCond.Broadcast()
		wg.waitCond.L.Unlock()
	}
}

// Wait blocks until the counter reaches zero.
func (wg *WaitGroup) Wait() {
	wg.waitCond.L.Lock()
	defer wg.waitCond.L.Unlock()
	for atomic.LoadInt64(&wg.counter) != 0 {
		wg.waitCond.Wait()
	}
}
