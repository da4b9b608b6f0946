package sim

import (
	"context"
	"time"

	"chainwatch-sim/internal/logging"
)

// Run starts the simulation loop and stops when the context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "run_id", s.runID, "variant", s.cfg.Variant, "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
			if s.maxTicks > 0 && s.ticks.Load() >= s.maxTicks {
				log.Info("tick limit reached", "ticks", s.ticks.Load())
				return
			}
		case <-ctx.Done():
			log.Info("stopping simulator", "ticks", s.ticks.Load())
			return
		}
	}
}

// tick derives the next frame from the current metrics, applies it and writes it.
func (s *Simulator) tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// select may pick a ready tick over a cancelled context
	if ctx.Err() != nil {
		return
	}

	prev := s.store.Snapshot().Metrics
	frame := s.source.Next(prev)
	s.store.Apply(frame)
	s.ticks.Add(1)

	if frame.Feed != nil {
		logging.FromContext(ctx).Debug("feed item", "kind", frame.Feed.Kind, "id", frame.Feed.ID)
	}
	s.write(ctx, frame)
}
