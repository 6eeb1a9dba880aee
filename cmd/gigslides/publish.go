package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gigslides/pkg/auth"
	"gigslides/pkg/carousel"
	"gigslides/pkg/logger"
	"gigslides/pkg/ui"
)

var (
	publishDay     string
	publishRegions string
	publishAccount string
	publishResume  bool
	publishForce   bool
	publishDryRun  bool
	publishCleanup bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Build and post each region's carousel to Instagram",
	Long: `Build each region's carousel, host the slides and post them to Instagram.

Every remote id is checkpointed, so a failed run can be continued with
--resume without re-uploading what already succeeded. A region that has
already been posted for the day is skipped unless --force is given.`,
	Example: `  # Post today's carousels
  gigslides publish

  # Continue an interrupted run for one region
  gigslides publish --region fitzroy --resume

  # Render and print captions without touching Instagram
  gigslides publish --dry-run`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVarP(&publishDay, "date", "d", "", "day to post, YYYY-MM-DD (default today in Melbourne)")
	publishCmd.Flags().StringVarP(&publishRegions, "region", "r", "", "comma-separated region ids (default all)")
	publishCmd.Flags().StringVarP(&publishAccount, "account", "a", "", "stored account to post with (default most recent)")
	publishCmd.Flags().BoolVar(&publishResume, "resume", false, "continue an unfinished run")
	publishCmd.Flags().BoolVar(&publishForce, "force", false, "discard any checkpoint and post again")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "render and build captions only")
	publishCmd.Flags().BoolVar(&publishCleanup, "cleanup", false, "delete hosted images after posting")
	publishCmd.MarkFlagsMutuallyExclusive("resume", "force")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	date, err := parseDate(publishDay, cfg.Caption.TimeZone, time.Now())
	if err != nil {
		return err
	}
	regions, err := selectRegions(cfg, publishRegions)
	if err != nil {
		return err
	}

	if !publishDryRun {
		if manager, err := auth.NewManager(); err == nil {
			if err := manager.Apply(cfg, publishAccount); err != nil && !errors.Is(err, auth.ErrCredentialsNotFound) {
				return err
			}
		} else {
			logger.WithError(err).Warn("credential store unavailable")
		}
		if err := cfg.ValidatePublish(); err != nil {
			return fmt.Errorf("not ready to publish (see 'gigslides auth login'): %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := carousel.New(cfg, carousel.Deps{Logger: logger.GetLogger()})
	if err != nil {
		return err
	}
	defer func() {
		if err := p.WriteMetrics(); err != nil {
			logger.WithError(err).Warn("metrics not written")
		}
	}()

	records, err := p.Fetch(ctx, date)
	if err != nil {
		return err
	}

	opts := carousel.PublishOptions{
		Resume:  publishResume,
		Force:   publishForce,
		DryRun:  publishDryRun,
		Cleanup: publishCleanup,
	}

	var failed []string
	for _, region := range regions {
		c, err := p.Pack(records, date, region)
		if err != nil {
			return err
		}
		if w := ui.RenderWarnings(c.Set.Warnings); w != "" {
			fmt.Fprintln(ui.Output, w)
		}

		result, err := p.Publish(ctx, c, opts)
		if err != nil {
			ui.PrintError(region.Title, err)
			failed = append(failed, region.ID)
			continue
		}
		switch {
		case result.DryRun:
			ui.PrintInfo(region.Title, fmt.Sprintf("dry run, %d slides", c.TotalSlides()))
			fmt.Fprintln(ui.Output, result.Caption)
		case result.Skipped:
			ui.PrintWarning("Skipped", region.Title)
		default:
			ui.PrintSuccess(fmt.Sprintf("%s posted as %s", region.Title, result.PostID))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("publish failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
