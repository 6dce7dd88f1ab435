// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package merkle implements the SPV proof engine: parsing and serializing
// BIP-37 partial Merkle trees, recomputing Merkle roots from the flag/hash
// stream, and validating a block's proof-of-work (including the 2016-block
// difficulty retarget).
//
// The recursive, shared-mutable-index traversal of the reference
// implementation is replaced with an explicit cursor (REDESIGN FLAGS,
// spec.md §9): ExtractMatches walks the tree with two plain integer
// cursors and returns its result by value, so the reconstruction is
// testable without threading shared state through a recursive call.
package merkle

import (
	"bytes"
	"io"
	"math/bits"

	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/wire"
)

// PartialMerkleProof is the partial Merkle tree attached to a filtered
// block: total transaction count, the hash stream, and the traversal flag
// bitfield (§3 PartialMerkleProof).
type PartialMerkleProof struct {
	TotalTransactions uint32
	Hashes            []chainhash.Hash
	Flags             []byte
}

// Serialize writes the proof in the wire shape described in spec.md §4.2:
// totalTransactions:u32 | hashesCount:varInt | hashes | flagsLen:varInt | flags.
func (p *PartialMerkleProof) Serialize(w io.Writer) error {
	buf := make([]byte, 4)
	littleEndianPutUint32(buf, p.TotalTransactions)
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "merkle: failed to write totalTransactions")
	}

	if err := wire.WriteVarInt(w, uint64(len(p.Hashes))); err != nil {
		return errors.Wrap(err, "merkle: failed to write hash count")
	}
	for _, h := range p.Hashes {
		if _, err := w.Write(h[:]); err != nil {
			return errors.Wrap(err, "merkle: failed to write hash")
		}
	}

	if err := wire.WriteVarInt(w, uint64(len(p.Flags))); err != nil {
		return errors.Wrap(err, "merkle: failed to write flags length")
	}
	if _, err := w.Write(p.Flags); err != nil {
		return errors.Wrap(err, "merkle: failed to write flags")
	}
	return nil
}

// Deserialize reads a proof from r in the format written by Serialize.
func Deserialize(r io.Reader) (*PartialMerkleProof, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(err, "merkle: failed to read totalTransactions")
	}
	p := &PartialMerkleProof{TotalTransactions: littleEndianUint32(buf[:])}

	hashCount, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, errors.Wrap(err, "merkle: failed to read hash count")
	}
	p.Hashes = make([]chainhash.Hash, hashCount)
	for i := range p.Hashes {
		if _, err := io.ReadFull(r, p.Hashes[i][:]); err != nil {
			return nil, errors.Wrap(err, "merkle: failed to read hash")
		}
	}

	flagsLen, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, errors.Wrap(err, "merkle: failed to read flags length")
	}
	p.Flags = make([]byte, flagsLen)
	if _, err := io.ReadFull(r, p.Flags); err != nil {
		return nil, errors.Wrap(err, "merkle: failed to read flags")
	}
	return p, nil
}

func littleEndianPutUint32(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

func littleEndianUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// flagBit reads the cursor-th bit of the flag bitstream (little-endian bit
// order within each byte, as BIP-37 specifies).
func flagBit(flags []byte, cursor int) bool {
	byteIdx := cursor / 8
	bitIdx := uint(cursor % 8)
	return flags[byteIdx]&(1<<bitIdx) != 0
}

// treeDepth returns ceil(log2(total)) — the leaf level of a tree with
// `total` leaves, matching BIP-37's definition. A single-leaf tree has
// depth 0.
func treeDepth(total uint32) int {
	if total <= 1 {
		return 0
	}
	return bits.Len32(total - 1)
}

// cursors tracks the position of an explicit depth-first walk over the
// flag/hash streams, replacing the reference implementation's shared
// mutable indices threaded through recursive calls.
type cursors struct {
	flagIdx int
	hashIdx int
}

// MatchedTx pairs a matched leaf hash with its position in the block.
type MatchedTx struct {
	Index int
	Hash  chainhash.Hash
}

// ExtractMatches recomputes the Merkle root implied by the proof and
// returns the set of matched transaction hashes. It returns an error if the
// hash/flag streams are malformed (too short, or leftover unconsumed data).
func (p *PartialMerkleProof) ExtractMatches() (root chainhash.Hash, matches []MatchedTx, err error) {
	if p.TotalTransactions == 0 {
		return chainhash.Hash{}, nil, nil
	}

	depth := treeDepth(p.TotalTransactions)
	c := &cursors{}
	var matched []MatchedTx

	var walk func(height, pos int) (chainhash.Hash, error)
	walk = func(height, pos int) (chainhash.Hash, error) {
		if c.flagIdx/8 >= len(p.Flags) {
			return chainhash.Hash{}, errors.New("merkle: flag bitstream exhausted")
		}
		parentOfMatch := flagBit(p.Flags, c.flagIdx)
		c.flagIdx++

		if height == depth || !parentOfMatch {
			if c.hashIdx >= len(p.Hashes) {
				return chainhash.Hash{}, errors.New("merkle: hash stream exhausted")
			}
			h := p.Hashes[c.hashIdx]
			c.hashIdx++
			if height == depth && parentOfMatch {
				matched = append(matched, MatchedTx{Index: pos, Hash: h})
			}
			return h, nil
		}

		left, err := walk(height+1, pos*2)
		if err != nil {
			return chainhash.Hash{}, err
		}

		// Determine whether a right child exists at this level: the
		// number of nodes at height+1 is ceil(total / 2^(depth-height-1)).
		nodesAtNextLevel := nodeCount(p.TotalTransactions, depth, height+1)
		var right chainhash.Hash
		if pos*2+1 < nodesAtNextLevel {
			right, err = walk(height+1, pos*2+1)
			if err != nil {
				return chainhash.Hash{}, err
			}
		} else {
			right = left
		}

		return combine(left, right), nil
	}

	root, err = walk(0, 0)
	if err != nil {
		return chainhash.Hash{}, nil, err
	}

	// Every hash must be consumed; leftover hashes indicate a malformed
	// proof. Leftover flag bits are treated as padding and not checked.
	if c.hashIdx != len(p.Hashes) {
		return chainhash.Hash{}, nil, errors.Errorf(
			"merkle: %d hashes left unconsumed after traversal", len(p.Hashes)-c.hashIdx)
	}

	return root, matched, nil
}

// nodeCount returns the number of nodes present at the given height of a
// tree with `total` leaves at depth `depth` (height == depth is the leaf
// row, height == 0 is the root).
func nodeCount(total uint32, depth, height int) int {
	n := int(total)
	for i := 0; i < depth-height; i++ {
		n = (n + 1) / 2
	}
	return n
}

// combine computes doubleSHA256(left || right), the internal-node hashing
// rule shared by every Merkle tree in this family.
func combine(left, right chainhash.Hash) chainhash.Hash {
	var buf bytes.Buffer
	buf.Write(left[:])
	buf.Write(right[:])
	return chainhash.DoubleHashH(buf.Bytes())
}
