// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/chainhash"
)

// BlockHeaderPayload is the fixed number of bytes a serialized block header
// occupies on the wire: 4 (version) + 32 (prevBlock) + 32 (merkleRoot) + 4
// (timestamp) + 4 (target) + 4 (nonce).
const BlockHeaderPayload = 4 + chainhash.HashSize + chainhash.HashSize + 4 + 4 + 4

// BlockHeader is immutable once deserialized. Height is mutable and starts
// "unknown" (UnknownHeight) until the header is placed in a chain.
type BlockHeader struct {
	Version      int32
	PrevBlock    chainhash.Hash
	MerkleRoot   chainhash.Hash
	Timestamp    time.Time
	Bits         uint32
	Nonce        uint32
	height       int32
	cachedHash   *chainhash.Hash
}

// UnknownHeight is the sentinel height of a header not yet placed in a chain.
const UnknownHeight = int32(-1)

// NewBlockHeader builds a header with UnknownHeight and no cached hash.
func NewBlockHeader(version int32, prevBlock, merkleRoot chainhash.Hash, timestamp time.Time, bits, nonce uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  prevBlock,
		MerkleRoot: merkleRoot,
		Timestamp:  timestamp,
		Bits:       bits,
		Nonce:      nonce,
		height:     UnknownHeight,
	}
}

// NewBlockHeaderFromHash builds a stand-in header for a block the caller
// knows only by hash and height, not by its full field set (e.g. a peer
// manager reporting which blocks to save without handing over the wire
// header itself). BlockHash returns hash from the cache rather than
// recomputing it from the header's zero-value body.
func NewBlockHeaderFromHash(hash chainhash.Hash, height int32) *BlockHeader {
	return &BlockHeader{height: height, cachedHash: &hash}
}

// Height returns the header's chain height, or UnknownHeight.
func (h *BlockHeader) Height() int32 { return h.height }

// SetHeight assigns the header's chain height.
func (h *BlockHeader) SetHeight(height int32) { h.height = height }

// InvalidateCache clears the cached block hash, forcing the next BlockHash
// call to recompute it. Needed after mutating Nonce (e.g. while mining) or
// any other header field post-construction.
func (h *BlockHeader) InvalidateCache() { h.cachedHash = nil }

// BlockHash returns the double-SHA-256 hash of the serialized header,
// computing and caching it on first use. The invariant
// blockHash = doubleSHA256(serialized 80-byte header) holds by construction.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	if h.cachedHash != nil {
		return *h.cachedHash
	}
	var buf bytes.Buffer
	// Serialize errors only on writer failure; bytes.Buffer never fails.
	_ = h.Serialize(&buf)
	hash := chainhash.DoubleHashH(buf.Bytes())
	h.cachedHash = &hash
	return hash
}

// Serialize writes the 80-byte little-endian header to w.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, h.Version); err != nil {
		return errors.Wrap(err, "wire: failed to write header version")
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return errors.Wrap(err, "wire: failed to write prevBlock hash")
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return errors.Wrap(err, "wire: failed to write merkle root")
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(h.Timestamp.Unix())); err != nil {
		return errors.Wrap(err, "wire: failed to write timestamp")
	}
	if err := binary.Write(w, binary.LittleEndian, h.Bits); err != nil {
		return errors.Wrap(err, "wire: failed to write bits")
	}
	if err := binary.Write(w, binary.LittleEndian, h.Nonce); err != nil {
		return errors.Wrap(err, "wire: failed to write nonce")
	}
	return nil
}

// DeserializeBlockHeader reads an 80-byte header from r.
func DeserializeBlockHeader(r io.Reader) (*BlockHeader, error) {
	h := &BlockHeader{height: UnknownHeight}

	if err := binary.Read(r, binary.LittleEndian, &h.Version); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read header version")
	}
	if _, err := io.ReadFull(r, h.PrevBlock[:]); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read prevBlock hash")
	}
	if _, err := io.ReadFull(r, h.MerkleRoot[:]); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read merkle root")
	}
	var ts uint32
	if err := binary.Read(r, binary.LittleEndian, &ts); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read timestamp")
	}
	h.Timestamp = time.Unix(int64(ts), 0).UTC()
	if err := binary.Read(r, binary.LittleEndian, &h.Bits); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read bits")
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Nonce); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read nonce")
	}
	return h, nil
}
