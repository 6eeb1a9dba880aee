package checkpoint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gigslides/pkg/logger"
)

const currentVersion = 1

// Checkpoint is the publish state of one carousel
type Checkpoint struct {
	Date   string `json:"date"`
	Region string `json:"region"`

	// HostedURLs and ItemContainers are indexed by slide number (0 is the title slide)
	HostedURLs     []string `json:"hosted_urls"`
	ItemContainers []string `json:"item_containers"`
	CarouselID     string   `json:"carousel_id,omitempty"`
	PostID         string   `json:"post_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Version     int        `json:"version"`
}

// Published reports whether the carousel has already been posted
func (c *Checkpoint) Published() bool {
	return c.PostID != ""
}

// HostedURL returns the hosted URL of slide n, or ""
func (c *Checkpoint) HostedURL(n int) string {
	if n < len(c.HostedURLs) {
		return c.HostedURLs[n]
	}
	return ""
}

// ItemContainer returns the item container id of slide n, or ""
func (c *Checkpoint) ItemContainer(n int) string {
	if n < len(c.ItemContainers) {
		return c.ItemContainers[n]
	}
	return ""
}

func setAt(s []string, n int, v string) []string {
	for len(s) <= n {
		s = append(s, "")
	}
	s[n] = v
	return s
}

// Manager handles checkpoint operations
type Manager struct {
	checkpointPath string
	date           string
	region         string
	logger         logger.Logger
}

// NewManager creates a manager for date and region in the user data directory
func NewManager(date time.Time, region string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}
	return NewManagerAt(filepath.Join(dataDir, "checkpoints"), date, region)
}

// NewManagerAt creates a manager that stores checkpoints in dir
func NewManagerAt(dir string, date time.Time, region string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}
	day := date.Format("2006-01-02")
	return &Manager{
		checkpointPath: filepath.Join(dir, fmt.Sprintf("%s_%s.checkpoint.json", day, region)),
		date:           day,
		region:         region,
		logger:         logger.GetLogger().WithField("component", "checkpoint"),
	}, nil
}

// SetLogger replaces the manager's logger
func (m *Manager) SetLogger(log logger.Logger) {
	m.logger = log
}

// Path returns the checkpoint file location
func (m *Manager) Path() string {
	return m.checkpointPath
}

// Create starts an empty checkpoint and saves it
func (m *Manager) Create() (*Checkpoint, error) {
	now := time.Now()
	checkpoint := &Checkpoint{
		Date:           m.date,
		Region:         m.region,
		HostedURLs:     []string{},
		ItemContainers: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        currentVersion,
	}
	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint created", map[string]interface{}{
		"date":   m.date,
		"region": m.region,
		"path":   m.checkpointPath,
	})
	return checkpoint, nil
}

// Load loads an existing checkpoint. It returns nil, nil when none exists.
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if checkpoint.Version > currentVersion {
		return nil, fmt.Errorf("checkpoint version %d is newer than supported version %d", checkpoint.Version, currentVersion)
	}

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"date":       checkpoint.Date,
		"region":     checkpoint.Region,
		"hosted":     len(checkpoint.HostedURLs),
		"containers": len(checkpoint.ItemContainers),
		"published":  checkpoint.Published(),
	})
	return &checkpoint, nil
}

// LoadOrCreate returns the existing checkpoint or a fresh one
func (m *Manager) LoadOrCreate() (*Checkpoint, error) {
	cp, err := m.Load()
	if err != nil || cp != nil {
		return cp, err
	}
	return m.Create()
}

// Save saves the checkpoint to disk atomically
func (m *Manager) Save(checkpoint *Checkpoint) error {
	checkpoint.UpdatedAt = time.Now()

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(checkpoint); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}
	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"date":        checkpoint.Date,
		"region":      checkpoint.Region,
		"carousel_id": checkpoint.CarouselID,
	})
	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	m.logger.Info("checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// RecordHosted saves the public URL of slide n
func (m *Manager) RecordHosted(cp *Checkpoint, n int, url string) error {
	cp.HostedURLs = setAt(cp.HostedURLs, n, url)
	return m.Save(cp)
}

// RecordItemContainer saves the item container id of slide n
func (m *Manager) RecordItemContainer(cp *Checkpoint, n int, id string) error {
	cp.ItemContainers = setAt(cp.ItemContainers, n, id)
	return m.Save(cp)
}

// RecordCarousel saves the carousel container id
func (m *Manager) RecordCarousel(cp *Checkpoint, id string) error {
	cp.CarouselID = id
	return m.Save(cp)
}

// RecordPublished marks the carousel as posted
func (m *Manager) RecordPublished(cp *Checkpoint, postID string) error {
	now := time.Now()
	cp.PostID = postID
	cp.PublishedAt = &now
	return m.Save(cp)
}

// Backup copies the current checkpoint next to itself with a .backup suffix
func (m *Manager) Backup() error {
	if !m.Exists() {
		return nil
	}

	src, err := os.Open(m.checkpointPath)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(m.checkpointPath + ".backup")
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy checkpoint to backup: %w", err)
	}
	m.logger.Debug("checkpoint backed up")
	return nil
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "gigslides")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "gigslides")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "gigslides")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "gigslides")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dataDir, nil
}
