package chainhash

// OutPoint identifies a single transaction output: the hash of the
// transaction that created it and its index within that transaction's
// output list.
type OutPoint struct {
	Hash  Hash
	Index uint32
}
