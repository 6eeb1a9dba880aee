package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gigslides/pkg/config"
	"gigslides/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage gigslides configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (GIGSLIDES_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to a file",
	Long: `Write the default configuration, including both regions and the
slide geometry, to a YAML file.

The file is created as '.gigslides.yaml' in the current directory unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after merging every source. Tokens are masked.`,
	RunE:  runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the configuration and report anything publishing would still need.

Layout and region errors fail validation. Missing Instagram or GitHub
credentials are only warnings, since they can come from 'gigslides auth'.`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".gigslides.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Run 'gigslides auth login' to store publishing credentials")
	fmt.Fprintln(ui.Output, "2. Run 'gigslides config validate' to check the configuration")
	fmt.Fprintln(ui.Output, "3. Preview today's carousels with 'gigslides build --preview --no-render'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	display := *cfg
	display.Instagram.AccessToken = mask(display.Instagram.AccessToken)
	display.Hosting.Token = mask(display.Hosting.Token)
	display.Notifications.SlackWebhookURL = mask(display.Notifications.SlackWebhookURL)

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	fmt.Fprint(ui.Output, string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	if err := cfg.ValidatePublish(); err != nil {
		ui.PrintWarning("Not ready to publish")
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				fmt.Fprintf(ui.Output, "  - %s\n", e)
			}
		} else {
			fmt.Fprintf(ui.Output, "  - %s\n", err)
		}
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Fprintln(ui.Output, "\nConfiguration summary:")
	fmt.Fprintf(ui.Output, "  Estimator: %s\n", cfg.Layout.Estimator)
	fmt.Fprintf(ui.Output, "  Slide content height: %dpx\n", cfg.ContainerHeightPx())
	fmt.Fprintf(ui.Output, "  Content slide cap: %d\n", cfg.Layout.MaxContentSlides)
	for _, r := range cfg.Regions {
		fmt.Fprintf(ui.Output, "  Region %s: %d postcodes\n", r.ID, len(r.Postcodes))
	}
	fmt.Fprintf(ui.Output, "  Output directory: %s\n", cfg.Output.Directory)
	return nil
}

// mask keeps the first and last 4 characters of long secrets
func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "***"
	default:
		return s[:4] + "..." + s[len(s)-4:]
	}
}
