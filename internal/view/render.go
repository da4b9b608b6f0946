package view

import (
	"fmt"
	"strconv"

	"chainwatch-sim/internal/chain"
	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/store"
)

// TableColumns are the node table headings, in cell order.
var TableColumns = []string{"ID", "Role", "Status", "Sync", "Peers", "CPU", "Memory"}

// Render builds the dashboard tree for state. It reads nothing but its
// arguments.
func Render(state store.State, cfg *config.Config) Element {
	root := Element{Kind: KindDashboard, Title: cfg.Layout.Title, NodeID: NoNode}
	root.Children = append(root.Children,
		tiles(KindTiles, cfg.Layout.Tiles, state, cfg),
		grid(state, cfg),
	)
	if sel, ok := selection(state); ok {
		root.Children = append(root.Children, sel)
	}
	if len(cfg.Layout.Stats) > 0 {
		root.Children = append(root.Children, tiles(KindStats, cfg.Layout.Stats, state, cfg))
	}
	root.Children = append(root.Children, feed(state, cfg), nodeTable(state, cfg))
	return root
}

func tiles(kind Kind, list []config.Tile, state store.State, cfg *config.Config) Element {
	el := Element{Kind: kind, NodeID: NoNode}
	for _, t := range list {
		el.Children = append(el.Children, Element{
			Kind:    KindTile,
			Key:     t.Key,
			Caption: cfg.TileLabel(t),
			Text:    Value(cfg, t.Key, state.Metrics),
			Accent:  t.Accent,
			NodeID:  NoNode,
		})
	}
	return el
}

// grid always yields Grid.Size cells; missing nodes render as muted
// placeholders until the first frame lands.
func grid(state store.State, cfg *config.Config) Element {
	el := Element{Kind: KindGrid, Title: cfg.Layout.GridTitle, Columns: cfg.Grid.Columns, NodeID: NoNode}
	for i := 0; i < cfg.Grid.Size; i++ {
		if i >= len(state.Grid) {
			el.Children = append(el.Children, Element{Kind: KindCell, Tone: ToneMuted, NodeID: NoNode})
			continue
		}
		n := state.Grid[i]
		el.Children = append(el.Children, Element{
			Kind:     KindCell,
			Key:      strconv.Itoa(n.ID),
			Text:     n.Role,
			Caption:  string(n.Status),
			Tone:     StatusTone(n.Status),
			NodeID:   n.ID,
			Selected: state.Selection.Active && state.Selection.NodeID == n.ID,
		})
	}
	return el
}

func selection(state store.State) (Element, bool) {
	n, ok := state.SelectedNode()
	if !ok {
		return Element{}, false
	}
	return Element{
		Kind:    KindSelection,
		Title:   fmt.Sprintf("Node %d", n.ID),
		Text:    fmt.Sprintf("%s · %s · %s", n.Role, n.Status, n.SyncStatus),
		Caption: fmt.Sprintf("peers %d · cpu %.1f%% · mem %.1f%% · uptime %.1f%%", n.Peers, n.CPU, n.Memory, n.Uptime),
		Tone:    StatusTone(n.Status),
		NodeID:  n.ID,
	}, true
}

func feed(state store.State, cfg *config.Config) Element {
	el := Element{Kind: KindFeed, Title: cfg.Feed.Title, NodeID: NoNode}
	if len(state.Feed) == 0 {
		el.Children = []Element{{Kind: KindPlaceholder, Text: cfg.Feed.Placeholder, Tone: ToneMuted, NodeID: NoNode}}
		return el
	}
	for _, it := range state.Feed {
		el.Children = append(el.Children, feedItem(it))
	}
	return el
}

func feedItem(it chain.FeedItem) Element {
	el := Element{Kind: KindItem, Key: strconv.FormatInt(it.ID, 10), NodeID: NoNode}
	switch it.Kind {
	case chain.KindAlert:
		el.Text = it.Message
		el.Title = it.Level
		el.Caption = it.Timestamp.UTC().Format("15:04:05")
		el.Tone = ToneWarn
		if it.Level == "critical" {
			el.Tone = ToneDanger
		}
	default:
		el.Title = Short(it.Hash)
		el.Text = fmt.Sprintf("%s → %s", Short(it.From), Short(it.To))
		el.Caption = fmt.Sprintf("%s · block %d", strconv.FormatFloat(it.Amount, 'f', 4, 64), it.Block)
		el.Tone = ToneInfo
	}
	return el
}

func nodeTable(state store.State, cfg *config.Config) Element {
	el := Element{Kind: KindTable, Title: cfg.Layout.TableTitle, NodeID: NoNode}
	header := Element{Kind: KindHeader, NodeID: NoNode}
	for _, c := range TableColumns {
		header.Children = append(header.Children, Element{Kind: KindText, Text: c, NodeID: NoNode})
	}
	el.Children = append(el.Children, header)
	for _, n := range state.Nodes {
		row := Element{Kind: KindRow, Key: strconv.Itoa(n.ID), Tone: StatusTone(n.Status), NodeID: n.ID}
		row.Children = []Element{
			text(strconv.Itoa(n.ID), ToneDefault),
			text(n.Role, ToneDefault),
			text(string(n.Status), StatusTone(n.Status)),
			text(string(n.SyncStatus), SyncTone(n.SyncStatus)),
			text(strconv.Itoa(n.Peers), ToneDefault),
			text(strconv.FormatFloat(n.CPU, 'f', 1, 64)+"%", ToneDefault),
			text(strconv.FormatFloat(n.Memory, 'f', 1, 64)+"%", ToneDefault),
		}
		el.Children = append(el.Children, row)
	}
	return el
}

func text(s string, tone Tone) Element {
	return Element{Kind: KindText, Text: s, Tone: tone, NodeID: NoNode}
}
