// Package dashboard renders Grafana dashboards for the GreptimeDB tables the
// simulator writes.
package dashboard

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/stoewer/go-strcase"

	"chainwatch-sim/internal/config"
)

//go:embed templates/grafana-dashboard.json.tmpl
var templates embed.FS

const (
	panelsPerRow = 3
	panelWidth   = 8
	panelHeight  = 7
)

type panel struct {
	ID       int
	Title    string
	Column   string
	Unit     string
	Decimals int
	X, Y     int
}

type dashboardData struct {
	Title     string
	UID       string
	Variant   string
	Panels    []panel
	FeedPanel panel
	NodePanel panel
}

// Render writes one dashboard per profile to outDir, named
// chainwatch-<profile-name>.json. It fails when GREPTIMEDB_DATASOURCE_UID is unset.
func Render(outDir string, cfgs ...*config.Config) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
	}
	t, err := template.New("grafana-dashboard.json.tmpl").Funcs(funcMap).ParseFS(templates, "templates/grafana-dashboard.json.tmpl")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, cfg := range cfgs {
		outPath := filepath.Join(outDir, slug(cfg)+".json")
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, newDashboardData(cfg)); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func newDashboardData(cfg *config.Config) dashboardData {
	d := dashboardData{
		Title:   cfg.Layout.Title,
		UID:     slug(cfg),
		Variant: cfg.Variant,
	}
	for i, m := range cfg.Metrics {
		title := m.Label
		if title == "" {
			title = m.Key
		}
		d.Panels = append(d.Panels, panel{
			ID:       i + 1,
			Title:    title,
			Column:   strcase.SnakeCase(m.Key),
			Unit:     grafanaUnit(m),
			Decimals: m.Decimals,
			X:        (i % panelsPerRow) * panelWidth,
			Y:        (i / panelsPerRow) * panelHeight,
		})
	}
	rows := (len(cfg.Metrics) + panelsPerRow - 1) / panelsPerRow
	next := len(cfg.Metrics) + 1
	d.FeedPanel = panel{ID: next, Title: cfg.Feed.Title, Y: rows * panelHeight}
	d.NodePanel = panel{ID: next + 1, Title: cfg.Layout.TableTitle, Y: rows*panelHeight + 8}
	return d
}

func grafanaUnit(m config.Metric) string {
	switch {
	case m.Format == config.FormatPercent:
		return "percentunit"
	case m.Unit != "":
		return "suffix: " + m.Unit
	}
	return "none"
}

func slug(cfg *config.Config) string {
	return "chainwatch-" + strcase.KebabCase(cfg.Name)
}
