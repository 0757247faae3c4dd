// Package course holds the per-course settings that drive a conversion run:
// which course and language are being converted, where the lesson export and
// the sound cache live, and how the resulting package is named.
package course

import (
	"fmt"
	"path/filepath"

	"codeberg.org/snonux/pimsleur2anki/internal"
)

// Config describes one course conversion
type Config struct {
	CourseName    string // Display name, e.g. "Polish I"
	Language      string // Language slug used in file names, e.g. "polish"
	Level         string // Course level used in the package name
	DataDir       string // Directory holding the lesson export
	SoundsDir     string // Sound cache directory (default: <DataDir>/sounds)
	InputPath     string // Lesson export (default: <DataDir>/practices_<Language>.json)
	OutputDir     string // Directory the package is written to
	PackagePrefix string // Leading part of the package file name
	RandomDeckIDs bool   // Assign fresh random deck ids on every run
}

// DefaultConfig returns the settings for the Polish I course
func DefaultConfig() *Config {
	return &Config{
		CourseName:    "Polish I",
		Language:      "polish",
		Level:         "1",
		DataDir:       "data",
		OutputDir:     ".",
		PackagePrefix: "pimsleur",
	}
}

// SoundsPath returns the sound cache directory
func (c *Config) SoundsPath() string {
	if c.SoundsDir != "" {
		return c.SoundsDir
	}
	return filepath.Join(c.DataDir, "sounds")
}

// PracticesPath returns the location of the lesson export
func (c *Config) PracticesPath() string {
	if c.InputPath != "" {
		return c.InputPath
	}
	return filepath.Join(c.DataDir, fmt.Sprintf("practices_%s.json", c.Language))
}

// PackageName returns the file name <prefix>-<language>-<level>.apkg
func (c *Config) PackageName() string {
	return fmt.Sprintf("%s-%s-%s.apkg",
		internal.SanitizeFilename(c.PackagePrefix),
		internal.SanitizeFilename(c.Language),
		internal.SanitizeFilename(c.Level))
}

// PackagePath returns the full output path of the package
func (c *Config) PackagePath() string {
	return filepath.Join(c.OutputDir, c.PackageName())
}

// DeckName returns the display name of the deck for a unit
func (c *Config) DeckName(unitNumber int) string {
	return fmt.Sprintf("Pimsleur %s::Unit %02d", c.CourseName, unitNumber)
}

// Validate checks that the settings needed to name decks and files are present
func (c *Config) Validate() error {
	if c.CourseName == "" {
		return fmt.Errorf("course name cannot be empty")
	}
	if c.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if c.Level == "" {
		return fmt.Errorf("level cannot be empty")
	}
	return nil
}
