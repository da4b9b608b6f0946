// Package store holds the dashboard state and notifies views on every change.
package store

import (
	"sync"

	"chainwatch-sim/internal/chain"
)

// DefaultFeedCapacity is the rolling feed length used when none is given.
const DefaultFeedCapacity = 5

// Selection is a weak reference to a grid node by id.
type Selection struct {
	NodeID int  `json:"node_id"`
	Active bool `json:"active"`
}

// State is an immutable copy of everything the dashboard shows.
type State struct {
	Version   uint64                `json:"version"`
	Metrics   chain.MetricsSnapshot `json:"metrics"`
	Grid      []chain.NodeRecord    `json:"grid"`
	Nodes     []chain.NodeRecord    `json:"nodes"`
	Feed      []chain.FeedItem      `json:"feed"`
	Selection Selection             `json:"selection"`
}

// SelectedNode returns the selected grid node, if any.
func (s State) SelectedNode() (chain.NodeRecord, bool) {
	if !s.Selection.Active {
		return chain.NodeRecord{}, false
	}
	for _, n := range s.Grid {
		if n.ID == s.Selection.NodeID {
			return n, true
		}
	}
	return chain.NodeRecord{}, false
}

// Store owns the dashboard state. Every mutation bumps the version and hands
// a fresh copy to the subscribers, in version order and outside the state lock.
// Subscribers must not mutate the store from inside the callback.
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	metrics   chain.MetricsSnapshot
	grid      []chain.NodeRecord
	nodes     []chain.NodeRecord
	feed      *Ring[chain.FeedItem]
	selection Selection
	version   uint64

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// New creates an empty store with the given feed capacity.
func New(feedCapacity int) *Store {
	if feedCapacity <= 0 {
		feedCapacity = DefaultFeedCapacity
	}
	return &Store{
		metrics: chain.MetricsSnapshot{Values: map[string]float64{}},
		feed:    NewRing[chain.FeedItem](feedCapacity),
		subs:    make(map[int]func(State)),
	}
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// ReplaceMetrics swaps in a new metrics snapshot.
func (s *Store) ReplaceMetrics(m chain.MetricsSnapshot) {
	s.update(func() bool {
		s.metrics = m.Clone()
		return true
	})
}

// ReplaceGrid swaps in a new grid and drops a selection that no longer resolves.
func (s *Store) ReplaceGrid(nodes []chain.NodeRecord) {
	s.update(func() bool {
		s.setGridLocked(nodes)
		return true
	})
}

// ReplaceNodes swaps in a new node table.
func (s *Store) ReplaceNodes(nodes []chain.NodeRecord) {
	s.update(func() bool {
		s.nodes = copyNodes(nodes)
		return true
	})
}

// PushFeed prepends an item to the rolling feed.
func (s *Store) PushFeed(item chain.FeedItem) {
	s.update(func() bool {
		s.feed.Push(item)
		return true
	})
}

// Apply replaces every part a frame carries in one step and notifies once.
func (s *Store) Apply(f chain.Frame) {
	s.update(func() bool {
		s.metrics = f.Metrics.Clone()
		if f.Grid != nil {
			s.setGridLocked(f.Grid)
		}
		if f.Nodes != nil {
			s.nodes = copyNodes(f.Nodes)
		}
		if f.Feed != nil {
			s.feed.Push(*f.Feed)
		}
		return true
	})
}

// Select points the selection at a grid node. It reports false, leaving the
// selection unchanged, when no grid node has that id.
func (s *Store) Select(id int) bool {
	ok := false
	s.update(func() bool {
		if !hasNode(s.grid, id) {
			return false
		}
		ok = true
		s.selection = Selection{NodeID: id, Active: true}
		return true
	})
	return ok
}

// ClearSelection removes the selection.
func (s *Store) ClearSelection() {
	s.update(func() bool {
		if !s.selection.Active {
			return false
		}
		s.selection = Selection{}
		return true
	})
}

func (s *Store) setGridLocked(nodes []chain.NodeRecord) {
	s.grid = copyNodes(nodes)
	if s.selection.Active && !hasNode(s.grid, s.selection.NodeID) {
		s.selection = Selection{}
	}
}

// update runs mutate under the lock and notifies subscribers when it reports a change.
func (s *Store) update(mutate func() bool) {
	s.mu.Lock()
	if !mutate() {
		s.mu.Unlock()
		return
	}
	s.version++
	st := s.stateLocked()
	// taken before mu is released so deliveries keep version order
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.notify(st)
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) stateLocked() State {
	return State{
		Version:   s.version,
		Metrics:   s.metrics.Clone(),
		Grid:      copyNodes(s.grid),
		Nodes:     copyNodes(s.nodes),
		Feed:      s.feed.Items(),
		Selection: s.selection,
	}
}

func copyNodes(nodes []chain.NodeRecord) []chain.NodeRecord {
	out := make([]chain.NodeRecord, len(nodes))
	copy(out, nodes)
	return out
}

func hasNode(nodes []chain.NodeRecord, id int) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}
