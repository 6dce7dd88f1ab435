// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addressmanager provides a concurrency-safe cache of known peers,
// keyed so that SetPeers/AddPeers (the P2P-mode sync manager's translation
// of the peer manager's SavePeers event, §4.1.2) can replace or merge the
// known set without duplicate entries.
package addressmanager

import (
	"sync"

	"github.com/spvwallet/walletcore/wire"
)

// Manager caches Peer (NetAddress) records in memory, independent of
// whether they are also durably persisted via the file-service.
type Manager struct {
	mutex sync.Mutex
	peers map[string]*wire.NetAddress
}

// New returns an empty address manager.
func New() *Manager {
	return &Manager{peers: make(map[string]*wire.NetAddress)}
}

// SetPeers replaces the entire known set with peers.
func (m *Manager) SetPeers(peers []*wire.NetAddress) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.peers = make(map[string]*wire.NetAddress, len(peers))
	for _, p := range peers {
		m.peers[p.Key()] = p
	}
}

// AddPeers merges peers into the known set, keyed by address so repeated
// sightings of the same peer update its record in place rather than
// duplicating it.
func (m *Manager) AddPeers(peers []*wire.NetAddress) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, p := range peers {
		m.peers[p.Key()] = p
	}
}

// Peers returns every cached peer, in no particular order.
func (m *Manager) Peers() []*wire.NetAddress {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := make([]*wire.NetAddress, 0, len(m.peers))
	for _, p := range m.peers {
		result = append(result, p)
	}
	return result
}

// Remove drops a peer from the cache, if present.
func (m *Manager) Remove(peer *wire.NetAddress) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.peers, peer.Key())
}

// Len reports the number of cached peers.
func (m *Manager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.peers)
}
