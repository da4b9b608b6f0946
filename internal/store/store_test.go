package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"chainwatch-sim/internal/chain"
)

func grid(n int) []chain.NodeRecord {
	nodes := make([]chain.NodeRecord, n)
	for i := range nodes {
		nodes[i] = chain.NodeRecord{ID: i, Status: chain.StatusHealthy}
	}
	return nodes
}

func TestRingEvictsOldestFirst(t *testing.T) {
	r := NewRing[int](5)
	for i := 1; i <= 8; i++ {
		r.Push(i)
		if r.Len() > 5 {
			t.Fatalf("ring grew past capacity: %d", r.Len())
		}
	}
	got := fmt.Sprint(r.Items())
	if got != "[8 7 6 5 4]" {
		t.Fatalf("ring items = %s, want [8 7 6 5 4]", got)
	}
}

func TestRingPartial(t *testing.T) {
	r := NewRing[string](3)
	r.Push("a")
	r.Push("b")
	if got := fmt.Sprint(r.Items()); got != "[b a]" {
		t.Fatalf("items = %s", got)
	}
	if NewRing[int](0).Cap() != 1 {
		t.Fatalf("capacity below one should be raised to one")
	}
}

func TestFeedCappedAtCapacity(t *testing.T) {
	s := New(5)
	for i := 0; i < 12; i++ {
		s.PushFeed(chain.FeedItem{ID: int64(i)})
	}
	feed := s.Snapshot().Feed
	if len(feed) != 5 {
		t.Fatalf("feed length %d, want 5", len(feed))
	}
	for i, item := range feed {
		if want := int64(11 - i); item.ID != want {
			t.Fatalf("feed[%d] = %d, want %d", i, item.ID, want)
		}
	}
}

func TestSelectRequiresExistingNode(t *testing.T) {
	s := New(5)
	s.ReplaceGrid(grid(24))
	if !s.Select(7) {
		t.Fatalf("Select(7) should succeed")
	}
	if s.Select(99) {
		t.Fatalf("Select(99) should fail")
	}
	st := s.Snapshot()
	if !st.Selection.Active || st.Selection.NodeID != 7 {
		t.Fatalf("selection = %+v, want node 7", st.Selection)
	}
	n, ok := st.SelectedNode()
	if !ok || n.ID != 7 {
		t.Fatalf("SelectedNode = %+v, %v", n, ok)
	}
}

func TestGridReplacementClearsStaleSelection(t *testing.T) {
	s := New(5)
	s.ReplaceGrid(grid(24))
	s.Select(20)
	s.ReplaceGrid(grid(24))
	if st := s.Snapshot(); !st.Selection.Active || st.Selection.NodeID != 20 {
		t.Fatalf("selection should survive when node still exists: %+v", st.Selection)
	}
	s.ReplaceGrid(grid(10))
	if st := s.Snapshot(); st.Selection.Active {
		t.Fatalf("selection should be cleared when node disappears: %+v", st.Selection)
	}
	if _, ok := s.Snapshot().SelectedNode(); ok {
		t.Fatalf("no node should resolve after clearing")
	}
}

func TestApplyFrame(t *testing.T) {
	s := New(5)
	var notified []State
	s.Subscribe(func(st State) { notified = append(notified, st) })

	s.Apply(chain.Frame{
		Metrics: chain.MetricsSnapshot{Tick: 1, Values: map[string]float64{"nodeCount": 3}},
		Grid:    grid(24),
		Nodes:   grid(3),
		Feed:    &chain.FeedItem{ID: 1},
	})
	if len(notified) != 1 {
		t.Fatalf("expected one notification per frame, got %d", len(notified))
	}
	st := notified[0]
	if st.Version != 1 || len(st.Grid) != 24 || len(st.Nodes) != 3 || len(st.Feed) != 1 {
		t.Fatalf("unexpected state after Apply: %+v", st)
	}

	// nil lists leave the current ones in place
	s.Apply(chain.Frame{Metrics: chain.MetricsSnapshot{Tick: 2, Values: map[string]float64{}}})
	st = s.Snapshot()
	if len(st.Grid) != 24 || len(st.Nodes) != 3 || st.Metrics.Tick != 2 {
		t.Fatalf("nil lists should be kept: %+v", st)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(5)
	s.ReplaceMetrics(chain.MetricsSnapshot{Values: map[string]float64{"x": 1}})
	s.ReplaceGrid(grid(2))
	st := s.Snapshot()
	st.Metrics.Values["x"] = 99
	st.Grid[0].Role = "mutated"
	again := s.Snapshot()
	if again.Metrics.Value("x") != 1 || again.Grid[0].Role != "" {
		t.Fatalf("snapshot shares memory with the store")
	}
}

func TestClearSelectionNotifiesOnlyOnChange(t *testing.T) {
	s := New(5)
	s.ReplaceGrid(grid(3))
	count := 0
	cancel := s.Subscribe(func(State) { count++ })
	s.ClearSelection()
	if count != 0 {
		t.Fatalf("clearing an empty selection should not notify")
	}
	s.Select(1)
	s.ClearSelection()
	if count != 2 {
		t.Fatalf("expected 2 notifications, got %d", count)
	}
	cancel()
	s.Select(2)
	if count != 2 {
		t.Fatalf("cancelled subscriber still notified")
	}
}

func TestConcurrentMutation(t *testing.T) {
	s := New(5)
	s.ReplaceGrid(grid(24))
	base := s.Snapshot().Version
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Select((i + j) % 24)
				s.PushFeed(chain.FeedItem{ID: int64(j)})
				s.ReplaceGrid(grid(24))
			}
		}(i)
	}
	wg.Wait()
	st := s.Snapshot()
	if len(st.Feed) != 5 {
		t.Fatalf("feed length %d after concurrent pushes", len(st.Feed))
	}
	if st.Version != base+8*100*3 {
		t.Fatalf("version = %d, want %d", st.Version, base+8*100*3)
	}
}

func TestNotificationsArriveInVersionOrder(t *testing.T) {
	s := New(5)
	s.ReplaceGrid(grid(24))

	var mu sync.Mutex
	var versions []uint64
	var last State
	entered := make(chan struct{})
	release := make(chan struct{})
	s.Subscribe(func(st State) {
		if st.Selection.NodeID == 1 {
			close(entered)
			<-release
		}
		mu.Lock()
		versions = append(versions, st.Version)
		last = st
		mu.Unlock()
	})

	first := make(chan struct{})
	go func() {
		defer close(first)
		s.Select(1)
	}()
	<-entered

	second := make(chan struct{})
	go func() {
		defer close(second)
		s.Select(2)
	}()
	select {
	case <-second:
		t.Fatalf("second notification delivered while the first was still in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-first
	<-second

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Fatalf("versions delivered out of order: %v", versions)
		}
	}
	if last.Selection.NodeID != 2 || last.Version != s.Snapshot().Version {
		t.Fatalf("last delivered state = v%d node %d, store at v%d", last.Version, last.Selection.NodeID, s.Snapshot().Version)
	}
}
