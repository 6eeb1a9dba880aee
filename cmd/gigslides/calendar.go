package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"gigslides/pkg/calendar"
	"gigslides/pkg/carousel"
	"gigslides/pkg/gig"
	"gigslides/pkg/logger"
	"gigslides/pkg/storage"
)

var (
	calendarDay    string
	calendarRegion string
	calendarOutput string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export a region's gigs as an iCalendar file",
	Long: `Export the day's gigs for one region as an iCalendar (.ics) file that
can be imported into any calendar app. Gigs without a start time become
all-day events.`,
	Example: `  # Write St Kilda's gigs to stdout
  gigslides calendar --region stkilda

  # Save to a file
  gigslides calendar --region fitzroy --date 2025-03-01 -o fitzroy.ics`,
	RunE: runCalendar,
}

func init() {
	rootCmd.AddCommand(calendarCmd)

	calendarCmd.Flags().StringVarP(&calendarDay, "date", "d", "", "day to export, YYYY-MM-DD (default today in Melbourne)")
	calendarCmd.Flags().StringVarP(&calendarRegion, "region", "r", "", "region id (required)")
	calendarCmd.Flags().StringVarP(&calendarOutput, "output", "o", "", "write to this file instead of stdout")
	_ = calendarCmd.MarkFlagRequired("region")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	date, err := parseDate(calendarDay, cfg.Caption.TimeZone, time.Now())
	if err != nil {
		return err
	}
	region, ok := cfg.Region(calendarRegion)
	if !ok {
		return fmt.Errorf("unknown region %q", calendarRegion)
	}

	p, err := carousel.New(cfg, carousel.Deps{Logger: logger.GetLogger()})
	if err != nil {
		return err
	}
	records, err := p.Fetch(context.Background(), date)
	if err != nil {
		return err
	}
	gigs := gig.NewRegion(region.ID, region.Title, region.Postcodes).Filter(records)

	exporter, err := calendar.NewExporter(cfg.Caption.TimeZone)
	if err != nil {
		return err
	}

	if calendarOutput == "" {
		return exporter.Encode(os.Stdout, region.Title, date, gigs)
	}

	var buf bytes.Buffer
	if err := exporter.Encode(&buf, region.Title, date, gigs); err != nil {
		return err
	}
	out, err := storage.NewManager(filepath.Dir(calendarOutput))
	if err != nil {
		return err
	}
	if err := out.Save(filepath.Base(calendarOutput), &buf); err != nil {
		return err
	}
	logger.WithFields(map[string]interface{}{
		"region": region.ID,
		"gigs":   len(gigs),
		"path":   calendarOutput,
	}).Info("calendar written")
	return nil
}
