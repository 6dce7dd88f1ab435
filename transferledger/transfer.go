// Package transferledger implements the TrackedTransfer ledger of spec.md
// §4.4: a separate record of (owned transaction copy, reference to the
// wallet-owned transaction) pairs that survives wallet-side deletions.
//
// Grounded on original_source/crypto/BRCryptoTransfer.c's transfer state
// machine, re-expressed per the REDESIGN FLAGS (spec.md §9) as a single
// owning slice/map instead of separately-allocated "owned copy"
// transactions kept alive by manual Take/Give refcounting: each
// TrackedTransfer carries its bytes directly, and ReferenceHandle
// degenerates to an identity token the wallet supplies on registration and
// that the ledger never dereferences.
package transferledger

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/chainhash"
)

// UnconfirmedHeight is the sentinel block height of a transaction that has
// not yet been included in a block (§3 Transaction).
const UnconfirmedHeight = int32(-1)

// State is the TransferState tag (§3 TransferState).
type State int

const (
	StateCreated State = iota
	StateSigned
	StateSubmitted
	StateIncluded
	StateErrored
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSigned:
		return "signed"
	case StateSubmitted:
		return "submitted"
	case StateIncluded:
		return "included"
	case StateErrored:
		return "errored"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// IncludedDetail is the payload carried by the Included variant.
type IncludedDetail struct {
	BlockNumber       int32
	TransactionIndex  uint32
	Timestamp         time.Time
	ConfirmedFeeBasis uint64
}

// TransferState is the tagged sum of §3: Created, Signed, Submitted,
// Included{...}, Errored{...}, Deleted.
type TransferState struct {
	State       State
	Included    *IncludedDetail // set iff State == StateIncluded
	SubmitError error           // set iff State == StateErrored
}

// allowedTransitions encodes the matrix of spec.md §4.4. Included->Included
// is permitted (reorg updates to height/timestamp).
var allowedTransitions = map[State]map[State]bool{
	StateCreated:   {StateSigned: true, StateErrored: true, StateDeleted: true},
	StateSigned:    {StateSubmitted: true, StateErrored: true, StateDeleted: true},
	StateSubmitted: {StateIncluded: true, StateErrored: true, StateDeleted: true},
	StateIncluded:  {StateIncluded: true, StateDeleted: true},
	StateErrored:   {StateSubmitted: true, StateIncluded: true, StateErrored: true, StateDeleted: true},
}

// CanTransition reports whether moving from `from` to `to` is permitted by
// the matrix in spec.md §4.4.
func CanTransition(from, to State) bool {
	return allowedTransitions[from][to]
}

// Handle is an identity-only reference to a wallet-owned transaction. The
// ledger never dereferences it; it exists purely so the wallet can later
// recognize "this is the same transaction I handed you before" (§3
// Reference handle, §9 REDESIGN FLAGS).
type Handle interface{}

// OwnedTx is the ledger's private copy of a transaction's bytes and the
// metadata the core needs, independent of the wallet's own (possibly
// stale or freed) copy.
type OwnedTx struct {
	Hash        chainhash.Hash
	Bytes       []byte
	Signed      bool
	BlockHeight int32
	Timestamp   time.Time
	IsSend      bool // true for outgoing payments, used by FindLastConfirmedSend
}

// TrackedTransfer is a single entry in the ledger (§3 TrackedTransfer).
type TrackedTransfer struct {
	OwnedCopy       OwnedTx
	ReferenceHandle Handle
	IsDeleted       bool
	IsResolved      bool
	State           TransferState
}

// Ledger is the concurrency-safe append-only (modulo in-place field
// updates) list of TrackedTransfers.
type Ledger struct {
	mutex     sync.Mutex
	transfers []*TrackedTransfer
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Add appends a new tracked transfer. It never searches for an existing
// entry with the same hash — spec.md §4.4 specifies add as append-only;
// callers that need dedup must FindByHash first.
func (l *Ledger) Add(ownedCopy OwnedTx, referenceHandle Handle) *TrackedTransfer {
	tt := &TrackedTransfer{
		OwnedCopy:       ownedCopy,
		ReferenceHandle: referenceHandle,
		State:           TransferState{State: StateCreated},
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.transfers = append(l.transfers, tt)
	return tt
}

// FindByOwned returns the tracked transfer whose reference handle equals
// handle, skipping deleted entries. Identity comparison only.
func (l *Ledger) FindByOwned(handle Handle) *TrackedTransfer {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for _, tt := range l.transfers {
		if tt.IsDeleted {
			continue
		}
		if tt.ReferenceHandle == handle {
			return tt
		}
	}
	return nil
}

// FindByHash linearly scans for a transfer with the given hash.
// includeDeleted controls whether tombstoned entries are considered.
func (l *Ledger) FindByHash(hash chainhash.Hash, includeDeleted bool) *TrackedTransfer {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for _, tt := range l.transfers {
		if tt.IsDeleted && !includeDeleted {
			continue
		}
		if tt.OwnedCopy.Hash == hash {
			return tt
		}
	}
	return nil
}

// FindLastConfirmedSend returns the not-deleted, valid, send-type transfer
// with the highest block height <= lastHeight - confirmationsUntilFinal, or
// nil if none qualifies.
func (l *Ledger) FindLastConfirmedSend(lastHeight int32, confirmationsUntilFinal int32) *TrackedTransfer {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	threshold := lastHeight - confirmationsUntilFinal
	var best *TrackedTransfer
	for _, tt := range l.transfers {
		if tt.IsDeleted || !tt.OwnedCopy.IsSend || tt.State.State == StateErrored {
			continue
		}
		h := tt.OwnedCopy.BlockHeight
		if h == UnconfirmedHeight || h > threshold {
			continue
		}
		if best == nil || h > best.OwnedCopy.BlockHeight {
			best = tt
		}
	}
	return best
}

// SetDeleted tombstones a transfer. The bytes are preserved (§3
// TrackedTransfer: "ownedCopy is never freed while the wallet manager
// lives") so a later TransactionDeleted event can still be formed.
func (l *Ledger) SetDeleted(tt *TrackedTransfer) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if !CanTransition(tt.State.State, StateDeleted) {
		return errors.Errorf("transferledger: invalid transition %s -> deleted", tt.State.State)
	}
	tt.State = TransferState{State: StateDeleted}
	tt.IsDeleted = true
	return nil
}

// SetResolved marks a transfer as resolved: the wallet has reported that
// every one of its input transactions is present (§4.4 Resolution).
func (l *Ledger) SetResolved(tt *TrackedTransfer) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	tt.IsResolved = true
}

// SetBlock records a (height, timestamp) inclusion, transitioning the
// transfer to Included (or refreshing it, for a reorg).
func (l *Ledger) SetBlock(tt *TrackedTransfer, height int32, txIndex uint32, timestamp time.Time, confirmedFeeBasis uint64) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if !CanTransition(tt.State.State, StateIncluded) {
		return errors.Errorf("transferledger: invalid transition %s -> included", tt.State.State)
	}
	tt.State = TransferState{
		State: StateIncluded,
		Included: &IncludedDetail{
			BlockNumber:       height,
			TransactionIndex:  txIndex,
			Timestamp:         timestamp,
			ConfirmedFeeBasis: confirmedFeeBasis,
		},
	}
	tt.OwnedCopy.BlockHeight = height
	tt.OwnedCopy.Timestamp = timestamp
	return nil
}

// SetErrored transitions a transfer to Errored with the given cause.
func (l *Ledger) SetErrored(tt *TrackedTransfer, submitErr error) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if !CanTransition(tt.State.State, StateErrored) {
		return errors.Errorf("transferledger: invalid transition %s -> errored", tt.State.State)
	}
	tt.State = TransferState{State: StateErrored, SubmitError: submitErr}
	return nil
}

// Advance transitions a transfer through the plain (payload-free) states:
// Signed or Submitted.
func (l *Ledger) Advance(tt *TrackedTransfer, to State) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if !CanTransition(tt.State.State, to) {
		return errors.Errorf("transferledger: invalid transition %s -> %s", tt.State.State, to)
	}
	tt.State = TransferState{State: to}
	return nil
}

// SetReferenced updates a transfer's reference handle — used when the
// wallet's de-duplication retains a different object than the one
// originally registered.
func (l *Ledger) SetReferenced(tt *TrackedTransfer, handle Handle) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	tt.ReferenceHandle = handle
}

// Unresolved returns every transfer that has not yet been marked resolved,
// used by the wallet manager to re-check resolution whenever a new
// resolution is observed (§4.4 Resolution).
func (l *Ledger) Unresolved() []*TrackedTransfer {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var result []*TrackedTransfer
	for _, tt := range l.transfers {
		if !tt.IsDeleted && !tt.IsResolved {
			result = append(result, tt)
		}
	}
	return result
}

// All returns every tracked transfer, including deleted ones.
func (l *Ledger) All() []*TrackedTransfer {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]*TrackedTransfer(nil), l.transfers...)
}
