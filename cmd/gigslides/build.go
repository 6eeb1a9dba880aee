package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gigslides/pkg/carousel"
	"gigslides/pkg/logger"
	"gigslides/pkg/ui"
)

var (
	buildDay       string
	buildRegions   string
	buildOutput    string
	buildPreview   bool
	buildBrowse    bool
	buildNoRender  bool
	buildEstimator string
	buildMaxSlides int
	buildContainer int
	buildWorkers   int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Pack the day's gigs into slides and render them",
	Long: `Fetch the day's gigs, pack them into slides for each region and render
the title and content slides as PNGs in the output directory.

Oversize gigs and dropped slides are reported as warnings; they never stop
the build.`,
	Example: `  # Build today's carousels for every region
  gigslides build

  # Preview St Kilda for a given day without writing PNGs
  gigslides build --date 2025-03-01 --region stkilda --preview --no-render

  # Page through the slides interactively using measured heights
  gigslides build --estimator dom --interactive`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildDay, "date", "d", "", "day to build, YYYY-MM-DD (default today in Melbourne)")
	buildCmd.Flags().StringVarP(&buildRegions, "region", "r", "", "comma-separated region ids (default all)")
	buildCmd.Flags().StringVarP(&buildOutput, "out", "o", "", "output directory for PNGs")
	buildCmd.Flags().BoolVar(&buildPreview, "preview", false, "print a slide preview")
	buildCmd.Flags().BoolVarP(&buildBrowse, "interactive", "i", false, "page through the slides in the terminal")
	buildCmd.Flags().BoolVar(&buildNoRender, "no-render", false, "skip writing PNGs")
	buildCmd.Flags().StringVar(&buildEstimator, "estimator", "", "height estimator: analytic or dom")
	buildCmd.Flags().IntVar(&buildMaxSlides, "max-slides", 0, "content slide cap (1-9)")
	buildCmd.Flags().IntVar(&buildContainer, "container-height", 0, "slide content height in px")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "render workers")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]interface{}{
		"output":           buildOutput,
		"estimator":        buildEstimator,
		"max-slides":       buildMaxSlides,
		"container-height": buildContainer,
		"workers":          buildWorkers,
	})
	if err != nil {
		return err
	}
	date, err := parseDate(buildDay, cfg.Caption.TimeZone, time.Now())
	if err != nil {
		return err
	}
	regions, err := selectRegions(cfg, buildRegions)
	if err != nil {
		return err
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

	for _, region := range regions {
		c, err := p.Pack(records, date, region)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s, %s", region.Title, date.Format("Mon 2 Jan 2006"))

		if buildBrowse {
			if err := ui.Browse(title, c.Set, c.Budget); err != nil {
				return err
			}
		} else if buildPreview {
			fmt.Fprintln(ui.Output, ui.RenderPreview(title, c.Set, c.Budget))
		} else if w := ui.RenderWarnings(c.Set.Warnings); w != "" {
			fmt.Fprintln(ui.Output, w)
		}

		ui.PrintInfo(region.Title, fmt.Sprintf("%d gigs on %d slides", len(c.Gigs), len(c.Set.Slides)))
		if buildNoRender {
			continue
		}
		if len(c.Set.Slides) == 0 {
			ui.PrintWarning("No gigs", region.ID)
			continue
		}
		results, err := p.Render(ctx, c, false)
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Rendered %d slides to %s", len(results), p.Storage.OutputDir()))
	}
	return nil
}
