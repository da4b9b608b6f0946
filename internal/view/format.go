package view

import (
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"chainwatch-sim/internal/chain"
	"chainwatch-sim/internal/config"
)

// FormatMetric renders v the way the metric declares: fixed decimals,
// a percentage or a thousands-grouped number, followed by the unit.
func FormatMetric(m config.Metric, v float64) string {
	var s string
	switch m.Format {
	case config.FormatPercent:
		s = strconv.FormatFloat(v*100, 'f', m.Decimals, 64) + "%"
	case config.FormatGrouped:
		s = grouped(v, m.Decimals)
	default:
		s = strconv.FormatFloat(v, 'f', m.Decimals, 64)
	}
	if m.Unit != "" {
		s += " " + m.Unit
	}
	return s
}

func grouped(v float64, decimals int) string {
	if decimals <= 0 {
		return humanize.Comma(int64(math.Round(v)))
	}
	return humanize.CommafWithDigits(v, decimals)
}

// Value renders a metric or label key from snap. Unknown keys render empty.
func Value(cfg *config.Config, key string, snap chain.MetricsSnapshot) string {
	if m, ok := cfg.Metric(key); ok {
		return FormatMetric(m, snap.Value(key))
	}
	if l, ok := snap.Labels[key]; ok {
		return capitalize(l)
	}
	if l, ok := cfg.Labels[key]; ok {
		return capitalize(l)
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

// Short abbreviates hashes and addresses to their head and tail.
func Short(s string) string {
	if len(s) <= 14 {
		return s
	}
	return s[:8] + "…" + s[len(s)-4:]
}

// StatusTone maps a node status to a tone.
func StatusTone(s chain.NodeStatus) Tone {
	switch s {
	case chain.StatusHealthy:
		return ToneOK
	case chain.StatusOffline:
		return ToneWarn
	case chain.StatusCompromised:
		return ToneDanger
	}
	return ToneMuted
}

// SyncTone maps a sync status to a tone.
func SyncTone(s chain.SyncStatus) Tone {
	if s == chain.SyncSynchronized {
		return ToneOK
	}
	return ToneWarn
}
