// Simulator driving the dashboard store from a value source
package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"chainwatch-sim/internal/chain"
	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/logging"
	"chainwatch-sim/internal/store"
)

// FrameWriter is an interface to support different output writers.
type FrameWriter interface {
	Write(chain.Frame) error
}

// Optional: writers can also support batch mode
type batchFrameWriter interface {
	WriteBatch([]chain.Frame) error
}

// Simulator ticks a value source into the store and mirrors every frame to a writer.
type Simulator struct {
	runID        string
	cfg          *config.Config
	source       chain.Source
	store        *store.Store
	writer       FrameWriter
	tickInterval time.Duration
	maxTicks     uint64
	ticks        atomic.Uint64
	mu           sync.Mutex
}

// NewSimulator wires a source to a store. writer may be nil.
func NewSimulator(cfg *config.Config, src chain.Source, st *store.Store, writer FrameWriter) *Simulator {
	return &Simulator{
		runID:        uuid.New().String(),
		cfg:          cfg,
		source:       src,
		store:        st,
		writer:       writer,
		tickInterval: cfg.Tick,
	}
}

// RunID identifies this simulator instance in sinks.
func (s *Simulator) RunID() string { return s.runID }

// Config returns the dashboard profile.
func (s *Simulator) Config() *config.Config { return s.cfg }

// Store returns the state store the simulator mutates.
func (s *Simulator) Store() *store.Store { return s.store }

// Ticks reports how many ticks have been applied.
func (s *Simulator) Ticks() uint64 { return s.ticks.Load() }

// SetTickInterval overrides the profile's tick interval. Call before Run.
func (s *Simulator) SetTickInterval(d time.Duration) {
	if d > 0 {
		s.tickInterval = d
	}
}

// SetWriter replaces the frame writer. Sinks keyed by RunID are built after
// the simulator, so call this before Init.
func (s *Simulator) SetWriter(w FrameWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// SetMaxTicks makes Run return after n ticks. Zero means no limit.
func (s *Simulator) SetMaxTicks(n uint64) { s.maxTicks = n }

// Init applies the source's mount-time frame to the store.
func (s *Simulator) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := s.source.Initial()
	s.store.Apply(frame)
	s.write(ctx, frame)
}

// Mount initialises the store and starts ticking in the background. The
// returned unmount cancels the loop and waits for it; no tick runs after it
// returns. Calling unmount more than once is safe.
func (s *Simulator) Mount(ctx context.Context) (unmount func()) {
	s.Init(ctx)
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (s *Simulator) write(ctx context.Context, frame chain.Frame) {
	if s.writer == nil {
		return
	}
	if err := s.writer.Write(frame); err != nil {
		logging.FromContext(ctx).Error("frame write failed", "tick", frame.Metrics.Tick, "err", err)
	}
}
