// Package archive moves the sound cache aside so the next run downloads
// every clip again.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ArchiveSounds moves the sound cache directory to
// <parent>/archive/<name>-<timestamp> and returns the new location
func ArchiveSounds(soundsDir string, out io.Writer) (string, error) {
	// Check if sounds directory exists
	if _, err := os.Stat(soundsDir); os.IsNotExist(err) {
		return "", fmt.Errorf("sounds directory does not exist: %s", soundsDir)
	}

	soundsDir = filepath.Clean(soundsDir)
	archiveDir := filepath.Join(filepath.Dir(soundsDir), "archive")

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	prefix := filepath.Base(soundsDir)
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", prefix, time.Now().Format("20060102-150405")))

	// Two archives within the same second get microseconds appended
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", prefix, time.Now().Format("20060102-150405.000000")))
	}

	if err := os.Rename(soundsDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive sounds directory: %w", err)
	}

	fmt.Fprintf(out, "Sounds directory archived to: %s\n", archivePath)
	return archivePath, nil
}
