// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/pow"
	"github.com/spvwallet/walletcore/wire"
)

// MaxTimeDrift is the farthest into the future a block's timestamp may be,
// relative to the validator's clock, before it is rejected.
const MaxTimeDrift = 2 * time.Hour

// Block pairs a header with its (optional) partial Merkle proof.
type Block struct {
	Header *wire.BlockHeader
	Proof  *PartialMerkleProof // nil when the header carries no transactions of interest
}

// IsValid checks a Block against the four rules of spec.md §4.2:
//  1. if the proof carries transactions, its recomputed root equals the
//     header's Merkle root;
//  2. the header's timestamp is not more than MaxTimeDrift in the future;
//  3. the header's compact target is in range for powLimitBits;
//  4. the block hash, read as a little-endian 256-bit integer, is <= the
//     expanded target.
func IsValid(b *Block, now time.Time, powLimitBits uint32) error {
	if b.Proof != nil && b.Proof.TotalTransactions > 0 {
		root, _, err := b.Proof.ExtractMatches()
		if err != nil {
			return errors.Wrap(err, "merkle: failed to recompute root")
		}
		if root != b.Header.MerkleRoot {
			return errors.New("merkle: recomputed root does not match header")
		}
	}

	if b.Header.Timestamp.After(now.Add(MaxTimeDrift)) {
		return errors.Errorf("merkle: header timestamp %s too far in the future", b.Header.Timestamp)
	}

	if !pow.IsInRange(b.Header.Bits, powLimitBits) {
		return errors.Errorf("merkle: compact target 0x%08x out of range", b.Header.Bits)
	}

	target := pow.CompactToBig(b.Header.Bits)
	hashInt := b.Header.BlockHash().LEUint256()
	if !pow.LessOrEqual(hashInt, target) {
		return errors.New("merkle: block hash does not satisfy proof of work")
	}

	return nil
}

// VerifyDifficultyTransition checks the retarget rule of spec.md §4.2 for a
// candidate header `n` whose parent is `prev`. transitionTimestamp is the
// timestamp of the block RetargetInterval positions before n (only
// consulted at a retarget boundary).
func VerifyDifficultyTransition(n, prev *wire.BlockHeader, transitionTimestamp time.Time, powLimitBits uint32) error {
	if n.PrevBlock != prev.BlockHash() {
		return errors.New("merkle: header does not extend the given parent")
	}
	if n.Height() != prev.Height()+1 {
		return errors.Errorf("merkle: header height %d is not parent height %d + 1", n.Height(), prev.Height())
	}

	if n.Height()%pow.RetargetInterval != 0 {
		if n.Bits != prev.Bits {
			return errors.Errorf("merkle: target changed outside a retarget boundary: 0x%08x != 0x%08x", n.Bits, prev.Bits)
		}
		return nil
	}

	want := pow.NextWorkRequired(prev.Bits, prev.Timestamp, transitionTimestamp, powLimitBits)
	if n.Bits != want {
		return errors.Errorf("merkle: retarget mismatch: got 0x%08x, want 0x%08x", n.Bits, want)
	}
	return nil
}
