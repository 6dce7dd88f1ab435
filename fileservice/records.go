package fileservice

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	"github.com/spvwallet/walletcore/chainhash"
	"github.com/spvwallet/walletcore/wire"
)

// TransactionRecord is the persisted form of a wallet transaction: its raw
// serialized bytes plus the block-height/timestamp pair the spec requires
// appended to it (§6 Storage layout).
type TransactionRecord struct {
	Hash        chainhash.Hash
	Bytes       []byte
	BlockHeight uint32
	Timestamp   time.Time
}

// SaveTransaction writes a transaction record, versioned per §6.
func (s *Store) SaveTransaction(rec *TransactionRecord) error {
	var buf bytes.Buffer
	buf.WriteByte(CurrentVersion)
	buf.Write(rec.Bytes)
	var tail [8]byte
	binary.LittleEndian.PutUint32(tail[0:4], rec.BlockHeight)
	binary.LittleEndian.PutUint32(tail[4:8], uint32(rec.Timestamp.Unix()))
	buf.Write(tail[:])
	return s.transactions.put(rec.Hash[:], buf.Bytes())
}

// LoadTransaction reads back a transaction record by hash.
func (s *Store) LoadTransaction(hash chainhash.Hash) (*TransactionRecord, bool, error) {
	raw, ok, err := s.transactions.get(hash[:])
	if err != nil || !ok {
		return nil, ok, err
	}
	rec, err := decodeTransactionRecord(hash, raw)
	return rec, true, err
}

func decodeTransactionRecord(hash chainhash.Hash, raw []byte) (*TransactionRecord, error) {
	if len(raw) < 1+8 {
		return nil, errors.New("fileservice: transaction record too short")
	}
	version := raw[0]
	if version != CurrentVersion {
		return nil, errors.Errorf("fileservice: unsupported transaction record version %d", version)
	}
	body := raw[1 : len(raw)-8]
	tail := raw[len(raw)-8:]
	return &TransactionRecord{
		Hash:        hash,
		Bytes:       append([]byte(nil), body...),
		BlockHeight: binary.LittleEndian.Uint32(tail[0:4]),
		Timestamp:   time.Unix(int64(binary.LittleEndian.Uint32(tail[4:8])), 0).UTC(),
	}, nil
}

// DeleteTransaction removes a persisted transaction record.
func (s *Store) DeleteTransaction(hash chainhash.Hash) error {
	return s.transactions.delete(hash[:])
}

// LoadAllTransactions reads every transaction record in the store.
func (s *Store) LoadAllTransactions() ([]*TransactionRecord, error) {
	keys, err := s.transactions.keys()
	if err != nil {
		return nil, err
	}
	records := make([]*TransactionRecord, 0, len(keys))
	for _, k := range keys {
		var hash chainhash.Hash
		copy(hash[:], k)
		rec, ok, err := s.LoadTransaction(hash)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// BlockRecord is the persisted form of a block header: the 80-byte header
// plus its chain height appended, per §6.
type BlockRecord struct {
	Header *wire.BlockHeader
}

// SaveBlock writes a block record.
func (s *Store) SaveBlock(h *wire.BlockHeader) error {
	var buf bytes.Buffer
	buf.WriteByte(CurrentVersion)
	if err := h.Serialize(&buf); err != nil {
		return errors.Wrap(err, "fileservice: failed to serialize block header")
	}
	var heightBuf [4]byte
	binary.LittleEndian.PutUint32(heightBuf[:], uint32(h.Height()))
	buf.Write(heightBuf[:])

	hash := h.BlockHash()
	return s.blocks.put(hash[:], buf.Bytes())
}

// LoadBlock reads back a block record by hash.
func (s *Store) LoadBlock(hash chainhash.Hash) (*wire.BlockHeader, bool, error) {
	raw, ok, err := s.blocks.get(hash[:])
	if err != nil || !ok {
		return nil, ok, err
	}
	h, err := decodeBlockRecord(raw)
	return h, true, err
}

func decodeBlockRecord(raw []byte) (*wire.BlockHeader, error) {
	if len(raw) < 1+wire.BlockHeaderPayload+4 {
		return nil, errors.New("fileservice: block record too short")
	}
	version := raw[0]
	if version != CurrentVersion {
		return nil, errors.Errorf("fileservice: unsupported block record version %d", version)
	}
	body := bytes.NewReader(raw[1 : 1+wire.BlockHeaderPayload])
	h, err := wire.DeserializeBlockHeader(body)
	if err != nil {
		return nil, errors.Wrap(err, "fileservice: failed to deserialize block header")
	}
	heightBuf := raw[1+wire.BlockHeaderPayload:]
	h.SetHeight(int32(binary.LittleEndian.Uint32(heightBuf)))
	return h, nil
}

// DeleteBlock removes a persisted block record.
func (s *Store) DeleteBlock(hash chainhash.Hash) error {
	return s.blocks.delete(hash[:])
}

// LoadAllBlocks reads every block record in the store.
func (s *Store) LoadAllBlocks() ([]*wire.BlockHeader, error) {
	keys, err := s.blocks.keys()
	if err != nil {
		return nil, err
	}
	headers := make([]*wire.BlockHeader, 0, len(keys))
	for _, k := range keys {
		var hash chainhash.Hash
		copy(hash[:], k)
		h, ok, err := s.LoadBlock(hash)
		if err != nil {
			return nil, err
		}
		if ok {
			headers = append(headers, h)
		}
	}
	return headers, nil
}

// peerKey hashes the peer's wire bytes with SHA-256, per §6 ("one file per
// peer, keyed by sha256(peer bytes)").
func peerKey(na *wire.NetAddress) ([]byte, error) {
	var buf bytes.Buffer
	if err := na.Serialize(&buf); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(buf.Bytes())
	return sum[:], nil
}

// SavePeer writes a peer record.
func (s *Store) SavePeer(na *wire.NetAddress) error {
	key, err := peerKey(na)
	if err != nil {
		return errors.Wrap(err, "fileservice: failed to key peer record")
	}
	var buf bytes.Buffer
	buf.WriteByte(CurrentVersion)
	if err := na.Serialize(&buf); err != nil {
		return errors.Wrap(err, "fileservice: failed to serialize peer")
	}
	return s.peers.put(key, buf.Bytes())
}

// LoadAllPeers reads every peer record in the store.
func (s *Store) LoadAllPeers() ([]*wire.NetAddress, error) {
	keys, err := s.peers.keys()
	if err != nil {
		return nil, err
	}
	peers := make([]*wire.NetAddress, 0, len(keys))
	for _, k := range keys {
		raw, ok, err := s.peers.get(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if len(raw) < 1+wire.PeerRecordSize {
			continue
		}
		if raw[0] != CurrentVersion {
			continue
		}
		na, err := wire.DeserializeNetAddress(bytes.NewReader(raw[1:]))
		if err != nil {
			return nil, errors.Wrap(err, "fileservice: failed to deserialize peer")
		}
		peers = append(peers, na)
	}
	return peers, nil
}

// DeletePeer removes a persisted peer record.
func (s *Store) DeletePeer(na *wire.NetAddress) error {
	key, err := peerKey(na)
	if err != nil {
		return err
	}
	return s.peers.delete(key)
}

// ClearAll removes every record from every bucket — used on load failure,
// per spec.md §4.3's initialization contract ("on any failure, clear all
// three and force a full sync").
func (s *Store) ClearAll() error {
	for _, b := range []*bucket{s.transactions, s.blocks, s.peers} {
		if err := clearBucket(b); err != nil {
			return err
		}
	}
	return nil
}

// ClearBlocks empties the blocks bucket, used when a SetBlocks event
// reports a replacement set rather than an incremental one (§2 "Set*
// events replace the known set; Add* events merge into it").
func (s *Store) ClearBlocks() error {
	return clearBucket(s.blocks)
}

// ClearPeers empties the peers bucket (SetPeers).
func (s *Store) ClearPeers() error {
	return clearBucket(s.peers)
}

func clearBucket(b *bucket) error {
	keys, err := b.keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := b.delete(k); err != nil {
			return err
		}
	}
	return nil
}
