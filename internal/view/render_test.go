package view

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"chainwatch-sim/internal/chain"
	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/store"
)

func profile(t *testing.T, name string) *config.Config {
	t.Helper()
	cfg, err := config.Profile(name)
	if err != nil {
		t.Fatalf("Profile(%q): %v", name, err)
	}
	return cfg
}

func mounted(t *testing.T, name string) (*store.Store, *config.Config, *chain.RandomSource) {
	t.Helper()
	cfg := profile(t, name)
	src := chain.NewRandomSource(cfg, rand.New(rand.NewSource(3)))
	st := store.New(cfg.Feed.Capacity)
	st.Apply(src.Initial())
	return st, cfg, src
}

func TestTileShowsFormattedValue(t *testing.T) {
	cfg := profile(t, "network")
	state := store.State{Metrics: chain.MetricsSnapshot{Values: map[string]float64{"transactionVolume": 42}}}
	tree := Render(state, cfg)
	for _, tile := range tree.FindAll(KindTile) {
		if tile.Key == "transactionVolume" {
			if tile.Text != "42 tx/s" {
				t.Fatalf("tile text = %q, want %q", tile.Text, "42 tx/s")
			}
			return
		}
	}
	t.Fatalf("transactionVolume tile not rendered")
}

func TestGridHasFixedCellCount(t *testing.T) {
	for _, name := range config.Profiles() {
		st, cfg, src := mounted(t, name)
		for i := 0; i < 50; i++ {
			if got := len(Render(st.Snapshot(), cfg).FindAll(KindCell)); got != 24 {
				t.Fatalf("%s tick %d: %d cells, want 24", name, i, got)
			}
			st.Apply(src.Next(st.Snapshot().Metrics))
		}
	}
	// empty store still renders a full grid
	if got := len(Render(store.State{}, profile(t, "network")).FindAll(KindCell)); got != 24 {
		t.Fatalf("empty grid renders %d cells", got)
	}
}

func TestClickHighlightsExactlyOneCell(t *testing.T) {
	st, cfg, _ := mounted(t, "network")
	cells := Render(st.Snapshot(), cfg).FindAll(KindCell)
	if !Click(st, cells[7]) {
		t.Fatalf("click on cell 7 did not select")
	}
	if sel := st.Snapshot().Selection; !sel.Active || sel.NodeID != cells[7].NodeID {
		t.Fatalf("selection = %+v, want node %d", sel, cells[7].NodeID)
	}

	tree := Render(st.Snapshot(), cfg)
	highlighted := 0
	for _, c := range tree.FindAll(KindCell) {
		if c.Selected {
			highlighted++
			if c.NodeID != cells[7].NodeID {
				t.Fatalf("wrong cell highlighted: %d", c.NodeID)
			}
		}
	}
	if highlighted != 1 {
		t.Fatalf("%d cells highlighted, want 1", highlighted)
	}
	if _, ok := tree.Find(KindSelection); !ok {
		t.Fatalf("selection detail missing")
	}
}

func TestClickIgnoresNonCells(t *testing.T) {
	st, _, _ := mounted(t, "ledger")
	if Click(st, Element{Kind: KindTile, NodeID: 3}) {
		t.Fatalf("tiles are not clickable")
	}
	if Click(st, Element{Kind: KindCell, NodeID: NoNode}) {
		t.Fatalf("placeholder cells are not clickable")
	}
}

func TestTableRowsMatchNodeCount(t *testing.T) {
	st, cfg, src := mounted(t, "network")
	for i := 0; i < 30; i++ {
		st.Apply(src.Next(st.Snapshot().Metrics))
		state := st.Snapshot()
		rows := Render(state, cfg).FindAll(KindRow)
		if want := int(state.Metrics.Value("nodeCount")); len(rows) != want {
			t.Fatalf("tick %d: %d rows, want %d", i, len(rows), want)
		}
	}
}

func TestTableRowTones(t *testing.T) {
	cfg := profile(t, "ledger")
	state := store.State{Nodes: []chain.NodeRecord{
		{ID: 1, Status: chain.StatusHealthy, SyncStatus: chain.SyncSynchronized},
		{ID: 2, Status: chain.StatusCompromised, SyncStatus: chain.SyncBehind},
	}}
	rows := Render(state, cfg).FindAll(KindRow)
	if rows[0].Tone != ToneOK || rows[1].Tone != ToneDanger {
		t.Fatalf("row tones = %q, %q", rows[0].Tone, rows[1].Tone)
	}
	if rows[1].Children[3].Tone != ToneWarn {
		t.Fatalf("behind sync cell should warn")
	}
}

func TestFeedPlaceholder(t *testing.T) {
	cfg := profile(t, "ledger")
	feed, _ := Render(store.State{}, cfg).Find(KindFeed)
	if len(feed.Children) != 1 || feed.Children[0].Kind != KindPlaceholder {
		t.Fatalf("expected placeholder, got %+v", feed.Children)
	}
	if feed.Children[0].Text != "No recent transactions" {
		t.Fatalf("placeholder = %q", feed.Children[0].Text)
	}

	state := store.State{Feed: []chain.FeedItem{
		{ID: 2, Kind: chain.KindAlert, Level: "critical", Message: "Potential fork detected at block 9", Timestamp: time.Unix(0, 0)},
		{ID: 1, Kind: chain.KindTransaction, Hash: "0x" + strings.Repeat("ab", 32), From: "0x01", To: "0x02", Amount: 1.5, Block: 9},
	}}
	feed, _ = Render(state, cfg).Find(KindFeed)
	if len(feed.Children) != 2 || feed.Children[0].Tone != ToneDanger {
		t.Fatalf("feed = %+v", feed.Children)
	}
	if !strings.Contains(feed.Children[1].Caption, "1.5000") {
		t.Fatalf("amount caption = %q", feed.Children[1].Caption)
	}
}
