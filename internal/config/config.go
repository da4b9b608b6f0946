// YAML profile loader with CUE validation integration
package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml schemas/dashboard.cue
var embedded embed.FS

// ErrInvalidConfig wraps every semantic validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Metric generation modes.
const (
	ModeUniform = "uniform"
	ModeWalk    = "walk"
	ModeCounter = "counter"
	ModeFixed   = "fixed"
)

// Display formats.
const (
	FormatNumber  = "number"
	FormatPercent = "percent"
	FormatGrouped = "grouped"
)

// Node list regeneration policies.
const (
	RegenerateTick  = "tick"
	RegenerateMount = "mount"
)

// Feed kinds.
const (
	FeedAlerts       = "alerts"
	FeedTransactions = "transactions"
)

const (
	defaultTickInterval = 1500 * time.Millisecond
	defaultGridColumns  = 6
	defaultFeedCapacity = 5
	defaultAlertMessage = "Potential fork detected at block %d"
	defaultAlertLevel   = "critical"
	defaultAmountMax    = 10
)

var defaultRoles = []string{"Miner", "Validator", "Full Node"}

// Metric declares one simulated numeric value and how it is displayed.
// Min and Max are optional; a missing bound leaves that side open.
type Metric struct {
	Key      string   `yaml:"key"`
	Label    string   `yaml:"label"`
	Unit     string   `yaml:"unit"`
	Mode     string   `yaml:"mode"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Step     float64  `yaml:"step"`
	Initial  float64  `yaml:"initial"`
	Integer  bool     `yaml:"integer"`
	Format   string   `yaml:"format"`
	Decimals int      `yaml:"decimals"`
}

// Clamp limits v to the metric's declared bounds.
func (m Metric) Clamp(v float64) float64 {
	if m.Min != nil && v < *m.Min {
		v = *m.Min
	}
	if m.Max != nil && v > *m.Max {
		v = *m.Max
	}
	return v
}

// InRange reports whether v satisfies the declared bounds.
func (m Metric) InRange(v float64) bool {
	if m.Min != nil && v < *m.Min {
		return false
	}
	if m.Max != nil && v > *m.Max {
		return false
	}
	return true
}

// Grid describes the fixed-size node-health grid.
type Grid struct {
	Size            int      `yaml:"size"`
	Columns         int      `yaml:"columns"`
	Roles           []string `yaml:"roles"`
	Regenerate      string   `yaml:"regenerate"`
	CompromisedRate float64  `yaml:"compromised_rate"`
	OfflineRate     float64  `yaml:"offline_rate"`
}

// Nodes describes the node table. With ShareGrid the table lists the grid nodes.
// Otherwise the table holds Count nodes, or as many as CountMetric says.
type Nodes struct {
	ShareGrid   bool    `yaml:"share_grid"`
	Count       int     `yaml:"count"`
	CountMetric string  `yaml:"count_metric"`
	OfflineRate float64 `yaml:"offline_rate"`
	BehindRate  float64 `yaml:"behind_rate"`
	PeersMin    int     `yaml:"peers_min"`
	PeersMax    int     `yaml:"peers_max"`
}

// Feed configures the rolling alert or transaction panel.
type Feed struct {
	Kind         string  `yaml:"kind"`
	Title        string  `yaml:"title"`
	Placeholder  string  `yaml:"placeholder"`
	Probability  float64 `yaml:"probability"`
	Capacity     int     `yaml:"capacity"`
	AlertLevel   string  `yaml:"alert_level"`
	AlertMessage string  `yaml:"alert_message"`
	AmountMax    float64 `yaml:"amount_max"`
}

// Tile references a metric or label key shown as a stat tile.
type Tile struct {
	Key    string `yaml:"key"`
	Label  string `yaml:"label"`
	Accent string `yaml:"accent"`
}

// Layout holds titles and the ordered tile lists.
type Layout struct {
	Title      string `yaml:"title"`
	GridTitle  string `yaml:"grid_title"`
	TableTitle string `yaml:"table_title"`
	Tiles      []Tile `yaml:"tiles"`
	Stats      []Tile `yaml:"stats"`
}

// Config is the root dashboard profile.
type Config struct {
	Name         string            `yaml:"name"`
	Variant      string            `yaml:"variant"`
	TickInterval string            `yaml:"tick_interval"`
	Seed         int64             `yaml:"seed"`
	Metrics      []Metric          `yaml:"metrics"`
	Labels       map[string]string `yaml:"labels"`
	Grid         Grid              `yaml:"grid"`
	Nodes        Nodes             `yaml:"nodes"`
	Feed         Feed              `yaml:"feed"`
	Layout       Layout            `yaml:"layout"`

	// Tick is TickInterval parsed by Validate.
	Tick time.Duration `yaml:"-"`
}

// Load reads a YAML profile from disk and validates it against a CUE schema.
// An empty schema path uses the embedded schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	schema, err := loadSchema(cueSchemaPath)
	if err != nil {
		return nil, err
	}
	return Parse(data, schema)
}

// Profile returns one of the embedded profiles by variant name.
func Profile(name string) (*Config, error) {
	data, err := embedded.ReadFile(path.Join("profiles", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: unknown profile %q (have %s)", ErrInvalidConfig, name, strings.Join(Profiles(), ", "))
	}
	schema, err := loadSchema("")
	if err != nil {
		return nil, err
	}
	return Parse(data, schema)
}

// Profiles lists the embedded profile names.
func Profiles() []string {
	entries, err := embedded.ReadDir("profiles")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Schema returns the embedded CUE schema.
func Schema() []byte {
	b, _ := embedded.ReadFile("schemas/dashboard.cue")
	return b
}

func loadSchema(p string) ([]byte, error) {
	if p == "" {
		return Schema(), nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return b, nil
}

// Parse validates YAML bytes against the CUE schema, decodes them and applies defaults.
func Parse(data, schema []byte) (*Config, error) {
	if err := ValidateWithCue(data, schema); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TickInterval == "" {
		c.TickInterval = defaultTickInterval.String()
	}
	if c.Grid.Columns <= 0 {
		c.Grid.Columns = defaultGridColumns
	}
	if len(c.Grid.Roles) == 0 {
		c.Grid.Roles = append([]string(nil), defaultRoles...)
	}
	if c.Grid.Regenerate == "" {
		c.Grid.Regenerate = RegenerateTick
	}
	if c.Feed.Capacity <= 0 {
		c.Feed.Capacity = defaultFeedCapacity
	}
	if c.Feed.Kind == FeedAlerts {
		if c.Feed.AlertMessage == "" {
			c.Feed.AlertMessage = defaultAlertMessage
		}
		if c.Feed.AlertLevel == "" {
			c.Feed.AlertLevel = defaultAlertLevel
		}
	}
	if c.Feed.Kind == FeedTransactions && c.Feed.AmountMax <= 0 {
		c.Feed.AmountMax = defaultAmountMax
	}
	if c.Nodes.PeersMax < c.Nodes.PeersMin {
		c.Nodes.PeersMax = c.Nodes.PeersMin
	}
	for i := range c.Metrics {
		if c.Metrics[i].Format == "" {
			c.Metrics[i].Format = FormatNumber
		}
	}
	if c.Labels == nil {
		c.Labels = map[string]string{}
	}
}

// Validate performs the semantic checks the schema cannot express.
func (c *Config) Validate() error {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return fmt.Errorf("%w: tick_interval: %v", ErrInvalidConfig, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive", ErrInvalidConfig)
	}
	c.Tick = d

	if len(c.Metrics) == 0 {
		return fmt.Errorf("%w: no metrics declared", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Metrics))
	for _, m := range c.Metrics {
		if seen[m.Key] {
			return fmt.Errorf("%w: duplicate metric %q", ErrInvalidConfig, m.Key)
		}
		seen[m.Key] = true
		if _, clash := c.Labels[m.Key]; clash {
			return fmt.Errorf("%w: %q is both a metric and a label", ErrInvalidConfig, m.Key)
		}
		if m.Min != nil && m.Max != nil && *m.Min > *m.Max {
			return fmt.Errorf("%w: metric %q: min > max", ErrInvalidConfig, m.Key)
		}
		if m.Mode == ModeUniform && (m.Min == nil || m.Max == nil) {
			return fmt.Errorf("%w: metric %q: uniform mode needs min and max", ErrInvalidConfig, m.Key)
		}
	}

	if c.Grid.Size <= 0 {
		return fmt.Errorf("%w: grid.size must be positive", ErrInvalidConfig)
	}
	if !c.Nodes.ShareGrid && c.Nodes.CountMetric != "" {
		m, ok := c.Metric(c.Nodes.CountMetric)
		if !ok {
			return fmt.Errorf("%w: nodes.count_metric %q is not a metric", ErrInvalidConfig, c.Nodes.CountMetric)
		}
		if m.Min == nil || *m.Min < 0 {
			return fmt.Errorf("%w: nodes.count_metric %q needs a non-negative min", ErrInvalidConfig, m.Key)
		}
	}
	if c.Feed.Probability < 0 || c.Feed.Probability > 1 {
		return fmt.Errorf("%w: feed.probability out of [0,1]", ErrInvalidConfig)
	}

	for _, t := range append(append([]Tile(nil), c.Layout.Tiles...), c.Layout.Stats...) {
		if _, ok := c.Metric(t.Key); ok {
			continue
		}
		if _, ok := c.Labels[t.Key]; ok {
			continue
		}
		return fmt.Errorf("%w: tile %q references an unknown key", ErrInvalidConfig, t.Key)
	}
	return nil
}

// Metric looks up a metric declaration by key.
func (c *Config) Metric(key string) (Metric, bool) {
	for _, m := range c.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

// TileLabel returns the tile's caption, falling back to the metric label or the key.
func (c *Config) TileLabel(t Tile) string {
	if t.Label != "" {
		return t.Label
	}
	if m, ok := c.Metric(t.Key); ok && m.Label != "" {
		return m.Label
	}
	return t.Key
}
