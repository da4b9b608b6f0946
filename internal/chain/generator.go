package chain

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"chainwatch-sim/internal/config"
)

// HeightKey is the metric key alerts and transactions read the block height from.
const HeightKey = "latestBlockHeight"

// RandomSource simulates dashboard values from a profile. One engine serves
// every variant; the profile decides metrics, list shapes and feed odds.
type RandomSource struct {
	cfg  *config.Config
	rand *rand.Rand
	now  func() time.Time
}

// NewRandomSource creates a simulation source. A nil r seeds from the profile
// seed, or from the clock when the profile has none.
func NewRandomSource(cfg *config.Config, r *rand.Rand) *RandomSource {
	if r == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		r = rand.New(rand.NewSource(seed))
	}
	return &RandomSource{cfg: cfg, rand: r, now: time.Now}
}

// Initial builds the mount-time frame: initial metric values, a full grid
// and the node table.
func (g *RandomSource) Initial() Frame {
	snap := MetricsSnapshot{
		Values:    make(map[string]float64, len(g.cfg.Metrics)),
		Labels:    g.labels(),
		Timestamp: g.now().UTC(),
	}
	for _, m := range g.cfg.Metrics {
		v := m.Initial
		if m.Integer {
			v = math.Round(v)
		}
		snap.Values[m.Key] = m.Clamp(v)
	}
	grid := g.generateGrid()
	return Frame{Metrics: snap, Grid: grid, Nodes: g.tableNodes(snap, grid)}
}

// Next perturbs every metric of prev, regenerates the lists the profile
// refreshes per tick and occasionally synthesises a feed item.
func (g *RandomSource) Next(prev MetricsSnapshot) Frame {
	snap := MetricsSnapshot{
		Tick:      prev.Tick + 1,
		Values:    make(map[string]float64, len(g.cfg.Metrics)),
		Labels:    g.labels(),
		Timestamp: g.now().UTC(),
	}
	for _, m := range g.cfg.Metrics {
		p, ok := prev.Values[m.Key]
		if !ok {
			p = m.Initial
		}
		snap.Values[m.Key] = g.nextValue(m, p)
	}

	frame := Frame{Metrics: snap}
	if g.cfg.Grid.Regenerate == config.RegenerateTick {
		frame.Grid = g.generateGrid()
	}
	if g.cfg.Nodes.ShareGrid {
		frame.Nodes = CloneNodes(frame.Grid)
	} else {
		frame.Nodes = g.generateNodes(g.nodeCount(snap))
	}
	if g.rand.Float64() < g.cfg.Feed.Probability {
		item := g.feedItem(prev, snap)
		frame.Feed = &item
	}
	return frame
}

func (g *RandomSource) nextValue(m config.Metric, prev float64) float64 {
	var v float64
	switch m.Mode {
	case config.ModeUniform:
		lo, hi := *m.Min, *m.Max
		if m.Integer {
			v = math.Floor(g.rand.Float64()*(hi-lo+1)) + lo
		} else {
			v = lo + g.rand.Float64()*(hi-lo)
		}
	case config.ModeWalk:
		v = prev + (g.rand.Float64()-0.5)*m.Step
	case config.ModeCounter:
		v = prev + m.Step
	default:
		v = m.Initial
	}
	if m.Integer && m.Mode != config.ModeUniform {
		v = math.Round(v)
	}
	return m.Clamp(v)
}

func (g *RandomSource) labels() map[string]string {
	out := make(map[string]string, len(g.cfg.Labels))
	for k, v := range g.cfg.Labels {
		out[k] = v
	}
	return out
}

func (g *RandomSource) nodeCount(snap MetricsSnapshot) int {
	n := g.cfg.Nodes.Count
	if g.cfg.Nodes.CountMetric != "" {
		n = int(snap.Value(g.cfg.Nodes.CountMetric))
	}
	if n < 0 {
		n = 0
	}
	return n
}

func (g *RandomSource) tableNodes(snap MetricsSnapshot, grid []NodeRecord) []NodeRecord {
	if g.cfg.Nodes.ShareGrid {
		return CloneNodes(grid)
	}
	return g.generateNodes(g.nodeCount(snap))
}

// generateGrid builds the fixed-size grid. Roles rotate by index.
func (g *RandomSource) generateGrid() []NodeRecord {
	gc := g.cfg.Grid
	nodes := make([]NodeRecord, gc.Size)
	for i := range nodes {
		n := g.baseNode(i)
		r := g.rand.Float64()
		switch {
		case r < gc.CompromisedRate:
			n.Status = StatusCompromised
		case r < gc.CompromisedRate+gc.OfflineRate:
			n.Status = StatusOffline
		default:
			n.Status = StatusHealthy
		}
		nodes[i] = n
	}
	return nodes
}

// generateNodes builds the variable-length node table, ids starting at 1.
func (g *RandomSource) generateNodes(count int) []NodeRecord {
	nc := g.cfg.Nodes
	nodes := make([]NodeRecord, count)
	for i := range nodes {
		n := g.baseNode(i)
		n.ID = i + 1
		n.Status = StatusHealthy
		if g.rand.Float64() < nc.OfflineRate {
			n.Status = StatusOffline
		}
		nodes[i] = n
	}
	return nodes
}

func (g *RandomSource) baseNode(i int) NodeRecord {
	nc := g.cfg.Nodes
	roles := g.cfg.Grid.Roles
	n := NodeRecord{
		ID:         i,
		SyncStatus: SyncSynchronized,
		Peers:      nc.PeersMin + g.rand.Intn(nc.PeersMax-nc.PeersMin+1),
		CPU:        round(g.rand.Float64()*100, 1),
		Memory:     round(g.rand.Float64()*100, 1),
		Uptime:     round(g.rand.Float64()*100, 1),
		Load:       round(g.rand.Float64()*100, 1),
	}
	if len(roles) > 0 {
		n.Role = roles[i%len(roles)]
	}
	if g.rand.Float64() < nc.BehindRate {
		n.SyncStatus = SyncBehind
	}
	return n
}

func (g *RandomSource) feedItem(prev, next MetricsSnapshot) FeedItem {
	ts := g.now().UTC()
	item := FeedItem{ID: ts.UnixNano(), Timestamp: ts}
	fc := g.cfg.Feed
	switch fc.Kind {
	case config.FeedTransactions:
		item.Kind = KindTransaction
		item.Block = uint64(next.Value(HeightKey))
		item.Hash = TxHash(g.entropy(), uint64Bytes(next.Tick), uint64Bytes(uint64(item.ID)))
		item.From = Address(g.entropy())
		item.To = Address(g.entropy())
		item.Amount = round(g.rand.Float64()*fc.AmountMax, 4)
	default:
		item.Kind = KindAlert
		item.Block = uint64(prev.Value(HeightKey))
		item.Level = fc.AlertLevel
		item.Message = fc.AlertMessage
		if strings.Contains(fc.AlertMessage, "%d") {
			item.Message = fmt.Sprintf(fc.AlertMessage, item.Block)
		}
	}
	return item
}

func (g *RandomSource) entropy() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[:8], g.rand.Uint64())
	binary.LittleEndian.PutUint64(b[8:], g.rand.Uint64())
	return b
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
