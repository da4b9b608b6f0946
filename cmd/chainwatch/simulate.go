package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chainwatch-sim/internal/admin"
	"chainwatch-sim/internal/logging"
	"chainwatch-sim/internal/sim"
	"chainwatch-sim/internal/store"
)

var (
	simPrintOnly bool
	simJSON      bool
	simTick      time.Duration
	simSeed      int64
	simTicks     uint64
	simLogFile   string
	simReplay    string
	simAdminAddr string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the simulator without a terminal UI",
	Long:  "simulate ticks the dashboard engine headless, writing every frame to STDOUT, a JSONL log or GreptimeDB.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfile()
		if err != nil {
			return err
		}
		tick, err := tickInterval(cfg, simTick)
		if err != nil {
			return err
		}

		logger, closeLog, err := newLogger("", os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()
		ctx := logging.NewContext(cmd.Context(), logger)
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		src, err := newSource(cfg, simReplay, simSeed)
		if err != nil {
			return err
		}
		st := store.New(cfg.Feed.Capacity)
		simulator := sim.NewSimulator(cfg, src, st, nil)
		simulator.SetTickInterval(tick)
		simulator.SetMaxTicks(simTicks)

		writer, cleanup, err := newWriters(cfg, simulator.RunID(), writerOptions{
			PrintOnly: simPrintOnly,
			Stdout:    true,
			Colorize:  !simJSON && term.IsTerminal(int(os.Stdout.Fd())),
			Record:    simLogFile,
		})
		if err != nil {
			return err
		}
		defer cleanup()
		simulator.SetWriter(writer)

		if simAdminAddr != "" {
			srv := admin.NewServer(cfg, st)
			go func() {
				if err := srv.Start(ctx, simAdminAddr); err != nil {
					logger.Error("admin server failed", "err", err)
				}
			}()
		}

		simulator.Init(ctx)
		simulator.Run(ctx)
		logger.Info("simulation stopped", "run_id", simulator.RunID(), "ticks", simulator.Ticks())
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print frames to STDOUT instead of writing to GreptimeDB")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "Print JSON lines even on a terminal")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 0, "Tick interval (default: profile tick_interval)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed (default: profile seed or clock)")
	simulateCmd.Flags().Uint64Var(&simTicks, "ticks", 0, "Stop after this many ticks (0 runs until interrupted)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Record frames to a JSONL file")
	simulateCmd.Flags().StringVar(&simReplay, "replay", "", "Play back a recorded JSONL file instead of simulating")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", "", "Serve the browser dashboard on this address (e.g. :8080)")
}
