package cli

import "codeberg.org/snonux/pimsleur2anki/internal/course"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile       string
	InputPath     string
	DataDir       string
	SoundsDir     string
	OutputDir     string
	ArchiveSounds bool

	// Course flags
	CourseName    string
	Language      string
	Level         string
	RandomDeckIDs bool
	CSV           bool

	// Translation flags
	FillTranslations    bool
	TranslationProvider string
	TranslationModel    string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	defaults := course.DefaultConfig()
	return &Flags{
		DataDir:             defaults.DataDir,
		OutputDir:           defaults.OutputDir,
		CourseName:          defaults.CourseName,
		Language:            defaults.Language,
		Level:               defaults.Level,
		TranslationProvider: "openai",
	}
}
