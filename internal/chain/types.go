// Dashboard data model shared by the simulator, store and views
package chain

import "time"

// NodeStatus is the health of one simulated participant.
type NodeStatus string

// SyncStatus reports whether a node follows the chain tip.
type SyncStatus string

// FeedKind distinguishes alert and transaction feed entries.
type FeedKind string

// Node status values.
const (
	StatusHealthy     NodeStatus = "healthy"
	StatusOffline     NodeStatus = "offline"
	StatusCompromised NodeStatus = "compromised"
)

// Sync status values.
const (
	SyncSynchronized SyncStatus = "synchronized"
	SyncBehind       SyncStatus = "behind"
)

// Feed kinds.
const (
	KindAlert       FeedKind = "alert"
	KindTransaction FeedKind = "transaction"
)

// MetricsSnapshot is the complete set of dashboard metric values at one tick.
type MetricsSnapshot struct {
	Tick      uint64             `json:"tick"`
	Values    map[string]float64 `json:"values"`
	Labels    map[string]string  `json:"labels,omitempty"`
	Timestamp time.Time          `json:"ts"`
}

// Value returns the numeric metric stored under key, or zero.
func (m MetricsSnapshot) Value(key string) float64 {
	return m.Values[key]
}

// Clone returns a deep copy.
func (m MetricsSnapshot) Clone() MetricsSnapshot {
	out := m
	if m.Values != nil {
		out.Values = make(map[string]float64, len(m.Values))
		for k, v := range m.Values {
			out.Values[k] = v
		}
	}
	if m.Labels != nil {
		out.Labels = make(map[string]string, len(m.Labels))
		for k, v := range m.Labels {
			out.Labels[k] = v
		}
	}
	return out
}

// NodeRecord is one simulated network participant's displayed attributes.
type NodeRecord struct {
	ID         int        `json:"id"`
	Role       string     `json:"role"`
	Status     NodeStatus `json:"status"`
	SyncStatus SyncStatus `json:"sync_status"`
	Peers      int        `json:"peers"`
	CPU        float64    `json:"cpu"`
	Memory     float64    `json:"memory"`
	Uptime     float64    `json:"uptime"`
	Load       float64    `json:"load"`
}

// FeedItem is a security alert or a transaction shown in the rolling panel.
type FeedItem struct {
	ID        int64     `json:"id"`
	Kind      FeedKind  `json:"kind"`
	Message   string    `json:"message,omitempty"`
	Level     string    `json:"level,omitempty"`
	Hash      string    `json:"hash,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Block     uint64    `json:"block"`
	Timestamp time.Time `json:"ts"`
}

// Frame is everything one tick produced. A nil Grid or Nodes leaves the
// current list untouched; a nil Feed adds nothing.
type Frame struct {
	Metrics MetricsSnapshot `json:"metrics"`
	Grid    []NodeRecord    `json:"grid,omitempty"`
	Nodes   []NodeRecord    `json:"nodes,omitempty"`
	Feed    *FeedItem       `json:"feed,omitempty"`
}

// Source yields dashboard values. RandomSource simulates them; a telemetry
// feed can take its place without the store or the views noticing.
type Source interface {
	// Initial returns the mount-time frame.
	Initial() Frame
	// Next derives the following frame from the previous metrics.
	Next(prev MetricsSnapshot) Frame
}

// CloneNodes copies a node list; nil stays nil.
func CloneNodes(nodes []NodeRecord) []NodeRecord {
	if nodes == nil {
		return nil
	}
	out := make([]NodeRecord, len(nodes))
	copy(out, nodes)
	return out
}
