package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gigslides/pkg/config"
	"gigslides/pkg/logger"
)

// loadConfig merges the global flags with the command's own and starts the logger
func loadConfig(cmd *cobra.Command, flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if cmd.Flags().Changed("notifications") {
		flags["notifications"] = notifications
	}
	if metricsTextfile != "" {
		flags["metrics-textfile"] = metricsTextfile
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// parseDate reads YYYY-MM-DD as a day in zone; empty means today there
func parseDate(value, zone string, now time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time zone %q: %w", zone, err)
	}
	if value == "" || value == "today" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}

// selectRegions returns every configured region, or the comma-separated ids asked for
func selectRegions(cfg *config.Config, ids string) ([]config.RegionConfig, error) {
	if strings.TrimSpace(ids) == "" {
		return cfg.Regions, nil
	}
	var out []config.RegionConfig
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		r, ok := cfg.Region(id)
		if !ok {
			return nil, fmt.Errorf("unknown region %q", id)
		}
		out = append(out, r)
	}
	return out, nil
}
