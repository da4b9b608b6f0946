package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/dashboard"
)

var grafanaOut string

var grafanaCmd = &cobra.Command{
	Use:   "grafana",
	Short: "Render Grafana dashboards for the GreptimeDB tables",
	Long:  "grafana writes one dashboard JSON per profile. GREPTIMEDB_DATASOURCE_UID must name the Grafana datasource.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfgs []*config.Config
		if profileConfigPath != "" {
			cfg, err := loadProfile()
			if err != nil {
				return err
			}
			cfgs = append(cfgs, cfg)
		} else {
			for _, name := range config.Profiles() {
				cfg, err := config.Profile(name)
				if err != nil {
					return err
				}
				cfgs = append(cfgs, cfg)
			}
		}
		if err := dashboard.Render(grafanaOut, cfgs...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d dashboards to %s\n", len(cfgs), grafanaOut)
		return nil
	},
}

func init() {
	grafanaCmd.Flags().StringVar(&grafanaOut, "out", "grafana/dashboards", "Output directory")
}
