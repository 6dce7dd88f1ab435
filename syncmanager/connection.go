package syncmanager

// connState is the ConnectionState enum of §3: Disconnected, Connected.
type connState int

const (
	stateDisconnected connState = iota
	stateConnected
)

// connection implements the shared transition matrix of §4.1.3. It is
// embedded by both mode implementations so the matrix is written once;
// each embedder supplies the hooks that start/cancel a sync.
type connection struct {
	state connState
}

// connectHooks are the effects a mode applies around a connect()/
// disconnect() transition: starting a sync once Connected, and reporting
// whether a full sync was in flight so disconnect() knows whether to
// emit SyncStopped{cancelled}.
type connectHooks interface {
	fullSyncInFlight() bool
	cancelSync()
	startSyncIfNeeded()
}

// connect runs the connect() transition of §4.1.3, returning the events to
// emit (in order) after the lock guarding state is released by the caller.
func (c *connection) connect(hooks connectHooks) []Event {
	if c.state == stateConnected {
		return nil
	}
	c.state = stateConnected
	hooks.startSyncIfNeeded()
	return []Event{eventConnected}
}

// disconnect runs the disconnect() transition of §4.1.3.
func (c *connection) disconnect(hooks connectHooks) []Event {
	if c.state == stateDisconnected {
		return nil
	}
	var events []Event
	if hooks.fullSyncInFlight() {
		events = append(events, eventSyncStoppedCancelled)
	}
	hooks.cancelSync()
	c.state = stateDisconnected
	events = append(events, eventDisconnected)
	return events
}

// Event is a placeholder tag resolved to a syncevent.Event by the caller;
// kept local to this file so connection.go has no dependency beyond the
// state machine itself. Mode implementations map these tags to concrete
// syncevent.Event values, since only they know the reason payloads.
type Event int

const (
	eventConnected Event = iota
	eventDisconnected
	eventSyncStoppedCancelled
)
