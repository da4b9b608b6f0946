package main

import (
	"os"

	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/sim"
)

const defaultGreptimeDatabase = "public"

type writerOptions struct {
	// PrintOnly forces STDOUT even when GREPTIMEDB_ENDPOINT is set.
	PrintOnly bool
	// Stdout falls back to STDOUT when no database is configured.
	Stdout   bool
	Colorize bool
	// Record mirrors frames to a JSONL file and feed items to Record+".feed".
	Record string
}

// newWriters sets up frame writers based on flags and env vars.
// It returns the writer (nil when there is nowhere to write) and a cleanup
// function to close any resources.
func newWriters(cfg *config.Config, runID string, opts writerOptions) (sim.FrameWriter, func(), error) {
	var writers []sim.FrameWriter
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	switch {
	case endpoint != "" && !opts.PrintOnly:
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = defaultGreptimeDatabase
		}
		gw, err := sim.NewGreptimeDBWriter(endpoint, database, cfg, runID)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, gw)
		closers = append(closers, gw.Close)
	case opts.Stdout || opts.PrintOnly:
		writers = append(writers, sim.NewStdoutWriter(cfg, opts.Colorize))
	}

	if opts.Record != "" {
		fw, err := sim.NewFileWriter(opts.Record, opts.Record+".feed")
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		writers = append(writers, fw)
		closers = append(closers, fw.Close)
	}

	switch len(writers) {
	case 0:
		return nil, cleanup, nil
	case 1:
		return writers[0], cleanup, nil
	}
	return sim.NewMultiWriter(writers...), cleanup, nil
}
