package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/pimsleur2anki/internal"
	"codeberg.org/snonux/pimsleur2anki/internal/course"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pimsleur2anki",
		Short: "Pimsleur lesson export to Anki converter",
		Long: `pimsleur2anki turns the practice data of a Pimsleur course into an
Anki package with one deck per unit.

It reads data/practices_<language>.json, downloads the referenced audio
clips into data/sounds and writes pimsleur-<language>-<level>.apkg.

Examples:
  pimsleur2anki                                   # Convert the Polish I export
  pimsleur2anki --course "Spanish I" --language spanish
  pimsleur2anki --fill-translations --csv         # Translate gaps, also write CSV
  pimsleur2anki --archive-sounds                  # Start over with an empty sound cache`,
		Args:         cobra.NoArgs,
		Version:      internal.Version,
		SilenceUsage: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.pimsleur2anki.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.InputPath, "input", "i", "", "Lesson export (default: <data-dir>/practices_<language>.json)")
	cmd.Flags().StringVar(&flags.DataDir, "data-dir", flags.DataDir, "Directory holding the lesson export")
	cmd.Flags().StringVar(&flags.SoundsDir, "sounds-dir", "", "Sound cache directory (default: <data-dir>/sounds)")
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory for the package")
	cmd.Flags().BoolVar(&flags.ArchiveSounds, "archive-sounds", false, "Move the sound cache to <data-dir>/archive and exit")

	// Course flags
	cmd.Flags().StringVar(&flags.CourseName, "course", flags.CourseName, "Course name used in deck names")
	cmd.Flags().StringVar(&flags.Language, "language", flags.Language, "Course language used in file names")
	cmd.Flags().StringVar(&flags.Level, "level", flags.Level, "Course level used in the package name")
	cmd.Flags().BoolVar(&flags.RandomDeckIDs, "random-deck-ids", false, "Assign random deck ids instead of ids derived from course and unit")
	cmd.Flags().BoolVar(&flags.CSV, "csv", false, "Also write the cards as CSV next to the package")

	// Translation flags
	cmd.Flags().BoolVar(&flags.FillTranslations, "fill-translations", false, "Translate cards that have no translation")
	cmd.Flags().StringVar(&flags.TranslationProvider, "translation-provider", flags.TranslationProvider, "Translation provider: openai or gemini")
	cmd.Flags().StringVar(&flags.TranslationModel, "translation-model", "", "Translation model (default depends on the provider)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("input.file", cmd.Flags().Lookup("input"))
	viper.BindPFlag("input.data_dir", cmd.Flags().Lookup("data-dir"))
	viper.BindPFlag("input.sounds_dir", cmd.Flags().Lookup("sounds-dir"))
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	viper.BindPFlag("output.csv", cmd.Flags().Lookup("csv"))
	viper.BindPFlag("course.name", cmd.Flags().Lookup("course"))
	viper.BindPFlag("course.language", cmd.Flags().Lookup("language"))
	viper.BindPFlag("course.level", cmd.Flags().Lookup("level"))
	viper.BindPFlag("course.random_deck_ids", cmd.Flags().Lookup("random-deck-ids"))
	viper.BindPFlag("translation.enabled", cmd.Flags().Lookup("fill-translations"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("translation-provider"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("translation-model"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".pimsleur2anki" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pimsleur2anki")
	}

	// Environment variables
	// PIMSLEUR2ANKI_COURSE_LANGUAGE sets course.language and so on
	viper.SetEnvPrefix("PIMSLEUR2ANKI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ResolveConfig merges the flags with the config file into the settings of
// one conversion run. Explicitly passed flags win over config file values.
func ResolveConfig(flags *Flags) (*course.Config, error) {
	flags.InputPath = stringSetting("input.file", flags.InputPath)
	flags.DataDir = stringSetting("input.data_dir", flags.DataDir)
	flags.SoundsDir = stringSetting("input.sounds_dir", flags.SoundsDir)
	flags.OutputDir = stringSetting("output.directory", flags.OutputDir)
	flags.CSV = boolSetting("output.csv", flags.CSV)
	flags.CourseName = stringSetting("course.name", flags.CourseName)
	flags.Language = stringSetting("course.language", flags.Language)
	flags.Level = stringSetting("course.level", flags.Level)
	flags.RandomDeckIDs = boolSetting("course.random_deck_ids", flags.RandomDeckIDs)
	flags.FillTranslations = boolSetting("translation.enabled", flags.FillTranslations)
	flags.TranslationProvider = stringSetting("translation.provider", flags.TranslationProvider)
	flags.TranslationModel = stringSetting("translation.model", flags.TranslationModel)

	config := course.DefaultConfig()
	config.CourseName = flags.CourseName
	config.Language = flags.Language
	config.Level = flags.Level
	config.DataDir = flags.DataDir
	config.SoundsDir = flags.SoundsDir
	config.InputPath = flags.InputPath
	config.OutputDir = flags.OutputDir
	config.RandomDeckIDs = flags.RandomDeckIDs

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func stringSetting(key, fallback string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return fallback
}

func boolSetting(key string, fallback bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return fallback
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translation.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translation.gemini_key")
}

// GetAPIKey returns the key of the named translation provider
func GetAPIKey(provider string) string {
	switch provider {
	case "openai":
		return GetOpenAIKey()
	case "gemini":
		return GetGeminiKey()
	default:
		return ""
	}
}
