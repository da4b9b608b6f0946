package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chainwatch-sim/internal/admin"
	"chainwatch-sim/internal/logging"
	"chainwatch-sim/internal/sim"
	"chainwatch-sim/internal/store"
	"chainwatch-sim/internal/tui"
)

var (
	dashTick      time.Duration
	dashSeed      int64
	dashLogFile   string
	dashRecord    string
	dashReplay    string
	dashAdminAddr string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live dashboard in the terminal",
	Long:  "dashboard mounts the simulator and renders metrics, the node grid, the feed and the node table until you quit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfile()
		if err != nil {
			return err
		}
		tick, err := tickInterval(cfg, dashTick)
		if err != nil {
			return err
		}

		// the terminal belongs to the UI; logs go to a file or nowhere
		logger, closeLog, err := newLogger(dashLogFile, io.Discard)
		if err != nil {
			return err
		}
		defer closeLog()
		ctx := logging.NewContext(cmd.Context(), logger)
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		src, err := newSource(cfg, dashReplay, dashSeed)
		if err != nil {
			return err
		}
		st := store.New(cfg.Feed.Capacity)
		simulator := sim.NewSimulator(cfg, src, st, nil)
		simulator.SetTickInterval(tick)

		writer, cleanup, err := newWriters(cfg, simulator.RunID(), writerOptions{Record: dashRecord})
		if err != nil {
			return err
		}
		defer cleanup()
		simulator.SetWriter(writer)

		ui := tui.NewWriter(cfg, st)
		unsubscribe := st.Subscribe(ui.Publish)
		defer unsubscribe()

		if dashAdminAddr != "" {
			srv := admin.NewServer(cfg, st)
			go func() {
				if err := srv.Start(ctx, dashAdminAddr); err != nil {
					logger.Error("admin server failed", "err", err)
				}
			}()
			ui.SetAdminAddr(dashAdminAddr)
		}

		unmount := simulator.Mount(ctx)
		select {
		case <-ui.Done():
		case <-ctx.Done():
			ui.Close()
		}
		unmount()
		logger.Info("dashboard closed", "ticks", simulator.Ticks())
		return ui.Err()
	},
}

func init() {
	dashboardCmd.Flags().DurationVar(&dashTick, "tick", 0, "Tick interval (default: profile tick_interval)")
	dashboardCmd.Flags().Int64Var(&dashSeed, "seed", 0, "Random seed (default: profile seed or clock)")
	dashboardCmd.Flags().StringVar(&dashLogFile, "log-file", "", "Write logs to this file")
	dashboardCmd.Flags().StringVar(&dashRecord, "record", "", "Record frames to a JSONL file")
	dashboardCmd.Flags().StringVar(&dashReplay, "replay", "", "Play back a recorded JSONL file instead of simulating")
	dashboardCmd.Flags().StringVar(&dashAdminAddr, "admin-addr", "", "Also serve the dashboard to browsers on this address (e.g. :8080)")
}
