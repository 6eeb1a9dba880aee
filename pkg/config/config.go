package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "GIGSLIDES_"

// Config holds all configuration options for the carousel generator
type Config struct {
	// Gig listings API
	Source SourceConfig `yaml:"source" json:"source"`

	// Slide geometry and packing
	Layout LayoutConfig `yaml:"layout" json:"layout"`

	// One carousel is built per region
	Regions []RegionConfig `yaml:"regions" json:"regions"`

	// Caption text and venue mentions
	Caption CaptionConfig `yaml:"caption" json:"caption"`

	// Instagram Graph API publishing
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Temporary public image hosting
	Hosting HostingConfig `yaml:"hosting" json:"hosting"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Retry policy for API calls
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Run metrics
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SourceConfig holds the gig listings API configuration
type SourceConfig struct {
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Location string        `yaml:"location" json:"location"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// LayoutConfig holds slide geometry and estimator settings.
// Heights and widths are CSS pixels of the 540x960 slide.
type LayoutConfig struct {
	SlideWidth      int `yaml:"slide_width" json:"slide_width"`
	SlideHeight     int `yaml:"slide_height" json:"slide_height"`
	HeaderHeight    int `yaml:"header_height" json:"header_height"`
	FooterHeight    int `yaml:"footer_height" json:"footer_height"`
	VerticalPadding int `yaml:"vertical_padding" json:"vertical_padding"`
	// ContainerHeight overrides the budget derived from the geometry when > 0
	ContainerHeight int `yaml:"container_height_px" json:"container_height_px"`

	CharsPerLine int `yaml:"chars_per_line" json:"chars_per_line"`
	BaseHeight   int `yaml:"base_height" json:"base_height"`
	LineHeight   int `yaml:"line_height" json:"line_height"`
	Padding      int `yaml:"padding" json:"padding"`

	MaxContentSlides int     `yaml:"max_content_slides" json:"max_content_slides"`
	Estimator        string  `yaml:"estimator" json:"estimator"`
	MaxGenreTags     int     `yaml:"max_genre_tags" json:"max_genre_tags"`
	RenderScale      float64 `yaml:"render_scale" json:"render_scale"`
}

// RegionConfig names a group of postcodes that gets its own carousel
type RegionConfig struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	Postcodes []string `yaml:"postcodes" json:"postcodes"`
}

// CaptionConfig holds caption settings
type CaptionConfig struct {
	PublicURL        string `yaml:"public_url" json:"public_url"`
	VenueHandlesFile string `yaml:"venue_handles_file" json:"venue_handles_file"`
	MaxMentions      int    `yaml:"max_mentions" json:"max_mentions"`
	MaxLength        int    `yaml:"max_length" json:"max_length"`
	TimeZone         string `yaml:"time_zone" json:"time_zone"`
}

// InstagramConfig holds Instagram Graph API configuration
type InstagramConfig struct {
	GraphBaseURL      string        `yaml:"graph_base_url" json:"graph_base_url"`
	APIVersion        string        `yaml:"api_version" json:"api_version"`
	BusinessAccountID string        `yaml:"business_account_id" json:"business_account_id"`
	AccessToken       string        `yaml:"access_token" json:"access_token"`
	UploadInterval    time.Duration `yaml:"upload_interval" json:"upload_interval"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
}

// HostingConfig holds the GitHub repository used to serve slide images
type HostingConfig struct {
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url"`
	RawBaseURL string `yaml:"raw_base_url" json:"raw_base_url"`
	Owner      string `yaml:"owner" json:"owner"`
	Repo       string `yaml:"repo" json:"repo"`
	Branch     string `yaml:"branch" json:"branch"`
	Directory  string `yaml:"directory" json:"directory"`
	Token      string `yaml:"token" json:"token"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Workers   int    `yaml:"workers" json:"workers"`
}

// RetryConfig holds retry configuration for API calls
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled         bool   `yaml:"enabled" json:"enabled"`
	Desktop         bool   `yaml:"desktop" json:"desktop"`
	SlackWebhookURL string `yaml:"slack_webhook_url" json:"slack_webhook_url"`
}

// MetricsConfig holds metrics output configuration
type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path; empty disables writing
	Textfile string `yaml:"textfile" json:"textfile"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:  "https://api.lml.live",
			Location: "melbourne",
			Timeout:  30 * time.Second,
		},
		Layout: LayoutConfig{
			SlideWidth:       540,
			SlideHeight:      960,
			HeaderHeight:     48,
			FooterHeight:     24,
			VerticalPadding:  16,
			CharsPerLine:     35,
			BaseHeight:       64,
			LineHeight:       24,
			Padding:          8,
			MaxContentSlides: 9,
			Estimator:        "analytic",
			MaxGenreTags:     2,
			RenderScale:      2,
		},
		Regions: DefaultRegions(),
		Caption: CaptionConfig{
			PublicURL:   "https://lml.live/?dateRange=today",
			MaxMentions: 19,
			MaxLength:   2200,
			TimeZone:    "Australia/Melbourne",
		},
		Instagram: InstagramConfig{
			GraphBaseURL:   "https://graph.facebook.com",
			APIVersion:     "v18.0",
			UploadInterval: time.Second,
			Timeout:        30 * time.Second,
		},
		Hosting: HostingConfig{
			APIBaseURL: "https://api.github.com",
			RawBaseURL: "https://raw.githubusercontent.com",
			Branch:     "main",
			Directory:  "temp-images",
		},
		Output: OutputConfig{
			Directory: "./output",
			Workers:   3,
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
			Multiplier:  2.0,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Desktop: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultRegions returns the inner-Melbourne regions posted every day
func DefaultRegions() []RegionConfig {
	return []RegionConfig{
		{
			ID:        "stkilda",
			Title:     "St Kilda",
			Postcodes: []string{"3182", "3183", "3185"},
		},
		{
			ID:        "fitzroy",
			Title:     "Fitzroy, Collingwood and Richmond",
			Postcodes: []string{"3065", "3066", "3067", "3068", "3121"},
		},
	}
}

// ContainerHeightPx returns the pixel budget of one slide's content area
func (c *Config) ContainerHeightPx() int {
	if c.Layout.ContainerHeight > 0 {
		return c.Layout.ContainerHeight
	}
	return c.Layout.SlideHeight - c.Layout.HeaderHeight - c.Layout.FooterHeight - c.Layout.VerticalPadding
}

// Region looks up a configured region by id
func (c *Config) Region(id string) (RegionConfig, bool) {
	for _, r := range c.Regions {
		if strings.EqualFold(r.ID, id) {
			return r, true
		}
	}
	return RegionConfig{}, false
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		v := os.Getenv(envPrefix + name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
			return
		}
		*dst = n
	}

	setString("SOURCE_URL", &c.Source.BaseURL)
	setString("LOCATION", &c.Source.Location)

	setInt("CONTAINER_HEIGHT", &c.Layout.ContainerHeight)
	setInt("CHARS_PER_LINE", &c.Layout.CharsPerLine)
	setInt("MAX_CONTENT_SLIDES", &c.Layout.MaxContentSlides)
	setString("ESTIMATOR", &c.Layout.Estimator)

	setString("VENUE_HANDLES_FILE", &c.Caption.VenueHandlesFile)

	setString("IG_ACCESS_TOKEN", &c.Instagram.AccessToken)
	setString("IG_ACCOUNT_ID", &c.Instagram.BusinessAccountID)

	setString("GITHUB_TOKEN", &c.Hosting.Token)
	setString("GITHUB_OWNER", &c.Hosting.Owner)
	setString("GITHUB_REPO", &c.Hosting.Repo)
	setString("GITHUB_BRANCH", &c.Hosting.Branch)

	setString("OUTPUT_DIR", &c.Output.Directory)
	setInt("WORKERS", &c.Output.Workers)

	setString("SLACK_WEBHOOK_URL", &c.Notifications.SlackWebhookURL)
	if v := os.Getenv(envPrefix + "NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}

	setString("METRICS_TEXTFILE", &c.Metrics.Textfile)
	setString("LOG_LEVEL", &c.Logging.Level)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".gigslides.yaml",
		".gigslides.yml",
		filepath.Join(home, ".config", "gigslides", "config.yaml"),
		filepath.Join(home, ".config", "gigslides", "config.yml"),
		filepath.Join(home, ".gigslides.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks the settings every command depends on
func (c *Config) Validate() error {
	var errs []error

	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source base URL is required"))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, errors.New("source timeout must be positive"))
	}

	if c.ContainerHeightPx() <= 0 {
		errs = append(errs, fmt.Errorf("container height must be positive, got %d", c.ContainerHeightPx()))
	}
	if c.Layout.SlideWidth <= 0 {
		errs = append(errs, errors.New("slide width must be positive"))
	}
	if c.Layout.CharsPerLine <= 0 {
		errs = append(errs, errors.New("chars per line must be positive"))
	}
	if c.Layout.MaxContentSlides < 1 || c.Layout.MaxContentSlides > 9 {
		errs = append(errs, fmt.Errorf("max content slides must be between 1 and 9, got %d", c.Layout.MaxContentSlides))
	}
	switch strings.ToLower(c.Layout.Estimator) {
	case "analytic", "dom", "measured":
	default:
		errs = append(errs, fmt.Errorf("unknown estimator %q", c.Layout.Estimator))
	}
	if c.Layout.RenderScale <= 0 {
		errs = append(errs, errors.New("render scale must be positive"))
	}

	if len(c.Regions) == 0 {
		errs = append(errs, errors.New("at least one region is required"))
	}
	seen := make(map[string]bool)
	for _, r := range c.Regions {
		if r.ID == "" {
			errs = append(errs, errors.New("region id is required"))
			continue
		}
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("duplicate region id %q", r.ID))
		}
		seen[r.ID] = true
		if len(r.Postcodes) == 0 {
			errs = append(errs, fmt.Errorf("region %q has no postcodes", r.ID))
		}
	}

	if c.Caption.MaxMentions < 0 {
		errs = append(errs, errors.New("max mentions cannot be negative"))
	}
	if _, err := time.LoadLocation(c.Caption.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("invalid time zone %q: %w", c.Caption.TimeZone, err))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.Workers <= 0 || c.Output.Workers > 10 {
		errs = append(errs, errors.New("workers must be between 1 and 10"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// ValidatePublish checks the credentials and endpoints needed to post a carousel
func (c *Config) ValidatePublish() error {
	var errs []error

	if c.Instagram.AccessToken == "" {
		errs = append(errs, errors.New("Instagram access token is required"))
	}
	if c.Instagram.BusinessAccountID == "" {
		errs = append(errs, errors.New("Instagram business account ID is required"))
	}
	if c.Instagram.UploadInterval < 0 {
		errs = append(errs, errors.New("upload interval cannot be negative"))
	}
	if c.Hosting.Token == "" {
		errs = append(errs, errors.New("GitHub token is required"))
	}
	if c.Hosting.Owner == "" || c.Hosting.Repo == "" {
		errs = append(errs, errors.New("GitHub owner and repo are required"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Output.Workers = workers
	}
	if estimator, ok := flags["estimator"].(string); ok && estimator != "" {
		c.Layout.Estimator = estimator
	}
	if height, ok := flags["container-height"].(int); ok && height > 0 {
		c.Layout.ContainerHeight = height
	}
	if maxSlides, ok := flags["max-slides"].(int); ok && maxSlides > 0 {
		c.Layout.MaxContentSlides = maxSlides
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if textfile, ok := flags["metrics-textfile"].(string); ok && textfile != "" {
		c.Metrics.Textfile = textfile
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".gigslides.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
