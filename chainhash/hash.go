// Package chainhash implements the 256-bit double-SHA-256 hash type shared
// by block headers, transactions, and Merkle proofs.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/pkg/errors"
)

// HashSize is the size, in bytes, of a double-SHA-256 hash.
const HashSize = 32

// Hash is a 256-bit hash stored internally in the wire byte order
// (little-endian, matching Bitcoin's convention). String() renders it
// byte-reversed, the customary "big-endian display" order.
type Hash [HashSize]byte

// String returns the hex encoding of the hash in display (reversed) order.
func (h Hash) String() string {
	var reversed Hash
	for i := 0; i < HashSize/2; i++ {
		reversed[i], reversed[HashSize-1-i] = h[HashSize-1-i], h[i]
	}
	return hex.EncodeToString(reversed[:])
}

// NewFromStr parses a display-order (byte-reversed) hex string into a Hash.
func NewFromStr(s string) (*Hash, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "chainhash: invalid hex string")
	}
	if len(raw) != HashSize {
		return nil, errors.Errorf("chainhash: invalid hash length %d, want %d", len(raw), HashSize)
	}
	var h Hash
	for i, b := range raw {
		h[HashSize-1-i] = b
	}
	return &h, nil
}

// Clone returns a copy of the hash.
func (h *Hash) Clone() *Hash {
	clone := *h
	return &clone
}

// IsEqual reports whether hash equals other. A nil hash equals only nil.
func (h *Hash) IsEqual(other *Hash) bool {
	if h == nil || other == nil {
		return h == other
	}
	return *h == *other
}

// DoubleHashH computes double-SHA-256(b) and returns it as a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return Hash(second)
}

// DoubleHashB computes double-SHA-256(b) and returns it as a byte slice.
func DoubleHashB(b []byte) []byte {
	h := DoubleHashH(b)
	return h[:]
}

// LEUint256 interprets the hash's wire bytes as a little-endian 256-bit
// unsigned integer, as required when comparing a block hash against an
// expanded proof-of-work target.
func (h Hash) LEUint256() *big.Int {
	be := make([]byte, HashSize)
	for i, b := range h {
		be[HashSize-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}
