// Package view turns a store state into a renderer-neutral element tree.
package view

// Kind names the role an element plays in the dashboard tree.
type Kind string

// Element kinds.
const (
	KindDashboard   Kind = "dashboard"
	KindTiles       Kind = "tiles"
	KindTile        Kind = "tile"
	KindGrid        Kind = "grid"
	KindCell        Kind = "cell"
	KindSelection   Kind = "selection"
	KindStats       Kind = "stats"
	KindFeed        Kind = "feed"
	KindItem        Kind = "item"
	KindPlaceholder Kind = "placeholder"
	KindTable       Kind = "table"
	KindHeader      Kind = "header"
	KindRow         Kind = "row"
	KindText        Kind = "text"
)

// Tone is a semantic colour hint. Hosts map it to their own palette.
type Tone string

// Tones.
const (
	ToneDefault Tone = ""
	ToneOK      Tone = "ok"
	ToneWarn    Tone = "warn"
	ToneDanger  Tone = "danger"
	ToneMuted   Tone = "muted"
	ToneInfo    Tone = "info"
)

// NoNode marks a cell that does not reference a node.
const NoNode = -1

// Element is one node of the rendered tree.
type Element struct {
	Kind     Kind      `json:"kind"`
	Key      string    `json:"key,omitempty"`
	Title    string    `json:"title,omitempty"`
	Text     string    `json:"text,omitempty"`
	Caption  string    `json:"caption,omitempty"`
	Tone     Tone      `json:"tone,omitempty"`
	Accent   string    `json:"accent,omitempty"`
	NodeID   int       `json:"node_id"`
	Selected bool      `json:"selected,omitempty"`
	Columns  int       `json:"columns,omitempty"`
	Children []Element `json:"children,omitempty"`
}

// Find returns the first element of the given kind, depth first.
func (e Element) Find(kind Kind) (Element, bool) {
	if e.Kind == kind {
		return e, true
	}
	for _, c := range e.Children {
		if found, ok := c.Find(kind); ok {
			return found, true
		}
	}
	return Element{}, false
}

// FindAll returns every element of the given kind, depth first.
func (e Element) FindAll(kind Kind) []Element {
	var out []Element
	e.walk(func(el Element) {
		if el.Kind == kind {
			out = append(out, el)
		}
	})
	return out
}

func (e Element) walk(fn func(Element)) {
	fn(e)
	for _, c := range e.Children {
		c.walk(fn)
	}
}

// Selector receives node selections. *store.Store satisfies it.
type Selector interface {
	Select(id int) bool
}

// Click forwards a pointer click on el. Only node cells react; the result
// reports whether a selection was made.
func Click(sel Selector, el Element) bool {
	if el.Kind != KindCell || el.NodeID == NoNode {
		return false
	}
	return sel.Select(el.NodeID)
}
