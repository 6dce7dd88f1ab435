// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

// PeerRecordSize is the fixed on-wire/on-disk size of a peer record:
// 16 (IPv6) + 2 (port) + 8 (services) + 8 (timestamp) + 1 (flags) = 35.
const PeerRecordSize = 16 + 2 + 8 + 8 + 1

// NetAddress is the wire representation of a Peer (§3 Peer): a 128-bit
// IPv6-encoded address (IPv4 addresses are stored IPv4-in-IPv6-mapped), a
// port, a services bitmask, a last-seen timestamp, and a flags byte, which
// is written as the last byte of the 35-byte record.
type NetAddress struct {
	IP        net.IP
	Port      uint16
	Services  uint64
	Timestamp time.Time
	Flags     uint8
}

// Serialize writes the fixed 35-byte big-endian peer record to w.
func (na *NetAddress) Serialize(w io.Writer) error {
	var ip [16]byte
	copy(ip[:], na.IP.To16())
	if _, err := w.Write(ip[:]); err != nil {
		return errors.Wrap(err, "wire: failed to write peer IP")
	}
	if err := binary.Write(w, binary.BigEndian, na.Port); err != nil {
		return errors.Wrap(err, "wire: failed to write peer port")
	}
	if err := binary.Write(w, binary.BigEndian, na.Services); err != nil {
		return errors.Wrap(err, "wire: failed to write peer services")
	}
	if err := binary.Write(w, binary.BigEndian, uint64(na.Timestamp.Unix())); err != nil {
		return errors.Wrap(err, "wire: failed to write peer timestamp")
	}
	if _, err := w.Write([]byte{na.Flags}); err != nil {
		return errors.Wrap(err, "wire: failed to write peer flags")
	}
	return nil
}

// DeserializeNetAddress reads a 35-byte peer record from r.
func DeserializeNetAddress(r io.Reader) (*NetAddress, error) {
	var ip [16]byte
	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read peer IP")
	}

	na := &NetAddress{IP: net.IP(append([]byte(nil), ip[:]...))}

	if err := binary.Read(r, binary.BigEndian, &na.Port); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read peer port")
	}
	if err := binary.Read(r, binary.BigEndian, &na.Services); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read peer services")
	}
	var ts uint64
	if err := binary.Read(r, binary.BigEndian, &ts); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read peer timestamp")
	}
	na.Timestamp = time.Unix(int64(ts), 0).UTC()

	var flags [1]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return nil, errors.Wrap(err, "wire: failed to read peer flags")
	}
	na.Flags = flags[0]

	return na, nil
}

// Key returns a comparable, map-safe identity for the address: the 16-byte
// IP followed by the big-endian port, matching the address-manager's
// AddressKey idiom.
func (na *NetAddress) Key() string {
	return string(na.IP.To16()) + string([]byte{byte(na.Port >> 8), byte(na.Port)})
}
