package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chainwatch-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded frame log",
	Long:  "replay feeds frames from a JSONL recording back into GreptimeDB or STDOUT at the recorded pace.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfile()
		if err != nil {
			return err
		}
		writer, cleanup, err := newWriters(cfg, uuid.New().String(), writerOptions{
			PrintOnly: replayPrintOnly,
			Stdout:    true,
			Colorize:  term.IsTerminal(int(os.Stdout.Fd())),
		})
		if err != nil {
			return err
		}
		defer cleanup()
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to a JSONL frame log")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 for no delay)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print frames to STDOUT instead of writing to GreptimeDB")
	replayCmd.MarkFlagRequired("input")
}
