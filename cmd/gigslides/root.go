package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"gigslides/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile      string
	logLevel        string
	noColor         bool
	notifications   bool
	metricsTextfile string
)

var rootCmd = &cobra.Command{
	Use:   "gigslides",
	Short: "Build and post daily Live Music Locator gig carousels",
	Long: `gigslides turns the day's Live Music Locator listings into Instagram
carousels, one per region.

Gigs are fetched from the gigs API, filtered to each region's postcodes and
packed into fixed-height slides in start-time order. A carousel holds at most
10 images: the title slide plus 9 content slides.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColor(false)
		}
		switch cmd.Name() {
		case "version", "help", "show", "calendar", "list":
		default:
			ui.PrintLogo()
		}
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.gigslides.yaml or ~/.config/gigslides/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "send desktop/Slack notifications")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")

	rootCmd.SetVersionTemplate(`gigslides {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
