// Package checkpoint records publish progress for one (date, region) carousel.
//
// A publish run hosts each slide, creates an item container per slide, then
// a carousel container, then publishes it. Every step is saved as it
// completes, so an interrupted run resumes where it stopped and a carousel
// that has been published is never posted a second time.
//
// Checkpoints are stored in platform-specific data directories:
//   - Linux: ~/.local/share/gigslides/checkpoints/
//   - macOS: ~/Library/Application Support/gigslides/checkpoints/
//   - Windows: %APPDATA%/gigslides/checkpoints/
package checkpoint
