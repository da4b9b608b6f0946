// Writer implementation printing frames to STDOUT
package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"chainwatch-sim/internal/chain"
	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/view"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
	colorCyan   = "\x1b[36m"
	colorGray   = "\x1b[90m"
)

// StdoutWriter prints frames either as JSON lines or, when colorize is set,
// as one human-friendly line per tick plus one line per feed item.
type StdoutWriter struct {
	cfg      *config.Config
	out      io.Writer
	colorize bool
	once     sync.Once
	mu       sync.Mutex
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter(cfg *config.Config, colorize bool) *StdoutWriter {
	return &StdoutWriter{cfg: cfg, out: os.Stdout, colorize: colorize}
}

// Write outputs a single frame.
func (w *StdoutWriter) Write(frame chain.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.colorize {
		data, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w.out, string(data))
		return err
	}
	w.once.Do(w.printOverview)
	w.printFrame(frame)
	return nil
}

// WriteBatch outputs multiple frames.
func (w *StdoutWriter) WriteBatch(frames []chain.Frame) error {
	for _, f := range frames {
		if err := w.Write(f); err != nil {
			return err
		}
	}
	return nil
}

func (w *StdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, w.cfg.Layout.Title)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Profile:\t%s\n", w.cfg.Name)
	fmt.Fprintf(tw, "Variant:\t%s\n", w.cfg.Variant)
	fmt.Fprintf(tw, "Tick:\t%s\n", w.cfg.Tick)
	fmt.Fprintf(tw, "Grid:\t%d nodes, regenerated per %s\n", w.cfg.Grid.Size, w.cfg.Grid.Regenerate)
	fmt.Fprintf(tw, "Feed:\t%s (p=%.2f)\n", w.cfg.Feed.Title, w.cfg.Feed.Probability)
	tw.Flush()
	fmt.Fprintln(w.out)
}

func (w *StdoutWriter) printFrame(frame chain.Frame) {
	m := frame.Metrics
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]%s %stick=%d%s", colorGray, m.Timestamp.Format(time.RFC3339), colorReset, colorBlue, m.Tick, colorReset)
	if w.cfg != nil {
		for _, metric := range w.cfg.Metrics {
			fmt.Fprintf(&b, " %s=%s", metric.Key, view.FormatMetric(metric, m.Value(metric.Key)))
		}
	}
	if len(frame.Grid) > 0 {
		healthy := 0
		for _, n := range frame.Grid {
			if n.Status == chain.StatusHealthy {
				healthy++
			}
		}
		col := colorGreen
		if healthy < len(frame.Grid) {
			col = colorYellow
		}
		fmt.Fprintf(&b, " %sgrid=%d/%d%s", col, healthy, len(frame.Grid), colorReset)
	}
	fmt.Fprintln(w.out, b.String())

	if it := frame.Feed; it != nil {
		switch it.Kind {
		case chain.KindAlert:
			fmt.Fprintf(w.out, "%sALERT%s level=%s %s\n", colorRed, colorReset, it.Level, it.Message)
		case chain.KindTransaction:
			fmt.Fprintf(w.out, "%sTX%s %s %s -> %s amount=%.4f block=%d\n", colorCyan, colorReset, it.Hash, it.From, it.To, it.Amount, it.Block)
		}
	}
}
