package sim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
	"github.com/stoewer/go-strcase"

	"chainwatch-sim/internal/chain"
	"chainwatch-sim/internal/config"
)

const defaultGreptimePort = 4001

var errGreptimeClosed = errors.New("greptimedb writer closed")

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter mirrors frames into GreptimeDB: one row per tick in the
// metrics table, one row per table node whenever the list is replaced and one
// row per feed item.
type GreptimeDBWriter struct {
	client       greptimeClient
	runID        string
	variant      string
	metricKeys   []string
	labelKeys    []string
	metricsTable string
	nodesTable   string
	feedTable    string
	timeout      time.Duration
	closed       atomic.Bool
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port") and
// prepares column layouts from the dashboard profile.
func NewGreptimeDBWriter(endpoint, database string, cfg *config.Config, runID string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	gcfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(gcfg)
	if err != nil {
		return nil, fmt.Errorf("greptimedb client: %w", err)
	}
	w := newGreptimeWriter(client, cfg, runID)
	return w, nil
}

func newGreptimeWriter(client greptimeClient, cfg *config.Config, runID string) *GreptimeDBWriter {
	w := &GreptimeDBWriter{
		client:       client,
		runID:        runID,
		variant:      cfg.Variant,
		metricsTable: "chain_metrics",
		nodesTable:   "chain_nodes",
		feedTable:    "chain_feed",
		timeout:      5 * time.Second,
	}
	for _, m := range cfg.Metrics {
		w.metricKeys = append(w.metricKeys, m.Key)
	}
	for k := range cfg.Labels {
		w.labelKeys = append(w.labelKeys, k)
	}
	sort.Strings(w.labelKeys)
	return w
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// no port given
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptimedb port %q: %w", portStr, err)
	}
	return host, port, nil
}

// Write inserts a single frame.
func (w *GreptimeDBWriter) Write(frame chain.Frame) error {
	return w.WriteBatch([]chain.Frame{frame})
}

// WriteBatch inserts several frames in one request.
func (w *GreptimeDBWriter) WriteBatch(frames []chain.Frame) error {
	if w.closed.Load() {
		return errGreptimeClosed
	}
	if len(frames) == 0 {
		return nil
	}
	metrics, err := w.metricsRows(frames)
	if err != nil {
		return err
	}
	tables := []*table.Table{metrics}

	nodes, err := w.nodeRows(frames)
	if err != nil {
		return err
	}
	if nodes != nil {
		tables = append(tables, nodes)
	}
	feed, err := w.feedRows(frames)
	if err != nil {
		return err
	}
	if feed != nil {
		tables = append(tables, feed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tables...); err != nil {
		return fmt.Errorf("greptimedb write: %w", err)
	}
	return nil
}

// Close releases the ingester connection. Later writes fail.
func (w *GreptimeDBWriter) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	if c, ok := w.client.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (w *GreptimeDBWriter) metricsRows(frames []chain.Frame) (*table.Table, error) {
	tbl, err := table.New(w.metricsTable)
	if err != nil {
		return nil, err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("variant", types.STRING)
	for _, k := range w.metricKeys {
		tbl.AddFieldColumn(strcase.SnakeCase(k), types.FLOAT64)
	}
	for _, k := range w.labelKeys {
		tbl.AddFieldColumn(strcase.SnakeCase(k), types.STRING)
	}
	tbl.AddFieldColumn("tick", types.UINT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, f := range frames {
		vals := []any{w.runID, w.variant}
		for _, k := range w.metricKeys {
			vals = append(vals, f.Metrics.Value(k))
		}
		for _, k := range w.labelKeys {
			vals = append(vals, f.Metrics.Labels[k])
		}
		vals = append(vals, f.Metrics.Tick, f.Metrics.Timestamp)
		if err := tbl.AddRow(vals...); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func (w *GreptimeDBWriter) nodeRows(frames []chain.Frame) (*table.Table, error) {
	var tbl *table.Table
	for _, f := range frames {
		if len(f.Nodes) == 0 {
			continue
		}
		if tbl == nil {
			var err error
			if tbl, err = table.New(w.nodesTable); err != nil {
				return nil, err
			}
			tbl.AddTagColumn("run_id", types.STRING)
			tbl.AddTagColumn("node_id", types.STRING)
			tbl.AddFieldColumn("role", types.STRING)
			tbl.AddFieldColumn("status", types.STRING)
			tbl.AddFieldColumn("sync_status", types.STRING)
			tbl.AddFieldColumn("peers", types.INT64)
			tbl.AddFieldColumn("cpu", types.FLOAT64)
			tbl.AddFieldColumn("memory", types.FLOAT64)
			tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
		}
		for _, n := range f.Nodes {
			err := tbl.AddRow(w.runID, strconv.Itoa(n.ID), n.Role, string(n.Status), string(n.SyncStatus),
				int64(n.Peers), n.CPU, n.Memory, f.Metrics.Timestamp)
			if err != nil {
				return nil, err
			}
		}
	}
	return tbl, nil
}

func (w *GreptimeDBWriter) feedRows(frames []chain.Frame) (*table.Table, error) {
	var tbl *table.Table
	for _, f := range frames {
		if f.Feed == nil {
			continue
		}
		if tbl == nil {
			var err error
			if tbl, err = table.New(w.feedTable); err != nil {
				return nil, err
			}
			tbl.AddTagColumn("run_id", types.STRING)
			tbl.AddTagColumn("kind", types.STRING)
			tbl.AddFieldColumn("item_id", types.INT64)
			tbl.AddFieldColumn("message", types.STRING)
			tbl.AddFieldColumn("level", types.STRING)
			tbl.AddFieldColumn("hash", types.STRING)
			tbl.AddFieldColumn("from_addr", types.STRING)
			tbl.AddFieldColumn("to_addr", types.STRING)
			tbl.AddFieldColumn("amount", types.FLOAT64)
			tbl.AddFieldColumn("block", types.UINT64)
			tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
		}
		it := f.Feed
		err := tbl.AddRow(w.runID, string(it.Kind), it.ID, it.Message, it.Level, it.Hash,
			it.From, it.To, it.Amount, it.Block, it.Timestamp)
		if err != nil {
			return nil, err
		}
	}
	return tbl, nil
}
