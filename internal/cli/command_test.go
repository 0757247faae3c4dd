package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "pimsleur2anki" {
		t.Errorf("Expected Use to be 'pimsleur2anki', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Anki") {
		t.Errorf("Expected Short description to mention Anki, got %q", cmd.Short)
	}

	// Test that flags are set up
	flagNames := []string{
		"config",
		"input",
		"data-dir",
		"sounds-dir",
		"output",
		"archive-sounds",
		"course",
		"language",
		"level",
		"random-deck-ids",
		"csv",
		"fill-translations",
		"translation-provider",
		"translation-model",
	}

	for _, name := range flagNames {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if name == "config" {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}

	if err := cmd.Args(cmd, []string{"extra"}); err == nil {
		t.Error("Expected positional arguments to be rejected")
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	defaults := map[string]string{
		"data-dir":             "data",
		"output":               ".",
		"course":               "Polish I",
		"language":             "polish",
		"level":                "1",
		"translation-provider": "openai",
		"input":                "",
		"random-deck-ids":      "false",
	}
	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("%s flag not found", name)
		}
		if flag.DefValue != want {
			t.Errorf("Expected default of --%s to be %q, got %q", name, want, flag.DefValue)
		}
	}

	if cmd.Flags().ShorthandLookup("o") == nil || cmd.Flags().ShorthandLookup("i") == nil {
		t.Error("Expected -o and -i shorthands")
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantLevel string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `course:
  name: Spanish I
  language: spanish
  level: "2"
translation:
  openai_key: test-key`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			wantLevel: "2",
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			cfgPath := tt.setupFunc(t)
			InitConfig(cfgPath)

			if tt.wantLevel != "" && viper.GetString("course.level") != tt.wantLevel {
				t.Errorf("Expected course.level %q, got %q", tt.wantLevel, viper.GetString("course.level"))
			}

			// Test environment variable prefix
			t.Setenv("PIMSLEUR2ANKI_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	CreateRootCommand(flags)

	config, err := ResolveConfig(flags)
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}

	if config.CourseName != "Polish I" || config.Language != "polish" || config.Level != "1" {
		t.Errorf("Unexpected course settings: %+v", config)
	}
	if config.PracticesPath() != filepath.Join("data", "practices_polish.json") {
		t.Errorf("Unexpected practices path %s", config.PracticesPath())
	}
	if config.SoundsPath() != filepath.Join("data", "sounds") {
		t.Errorf("Unexpected sounds path %s", config.SoundsPath())
	}
	if config.PackagePath() != "pimsleur-polish-1.apkg" {
		t.Errorf("Unexpected package path %s", config.PackagePath())
	}
	if config.RandomDeckIDs {
		t.Error("Expected deterministic deck ids by default")
	}
}

func TestResolveConfig_FlagsOverrideConfigFile(t *testing.T) {
	resetViper(t)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `course:
  name: Spanish I
  language: spanish
  level: "1"
output:
  directory: /srv/anki
  csv: true`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	flags := NewFlags()
	cmd := CreateRootCommand(flags)
	if err := cmd.ParseFlags([]string{"--level", "3", "--sounds-dir", "/cache/sounds"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	InitConfig(cfgPath)

	config, err := ResolveConfig(flags)
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}

	if config.CourseName != "Spanish I" {
		t.Errorf("CourseName = %q, want from config file", config.CourseName)
	}
	if config.Level != "3" {
		t.Errorf("Level = %q, want flag value 3", config.Level)
	}
	if config.OutputDir != "/srv/anki" {
		t.Errorf("OutputDir = %q, want /srv/anki", config.OutputDir)
	}
	if config.SoundsPath() != "/cache/sounds" {
		t.Errorf("SoundsPath() = %q, want /cache/sounds", config.SoundsPath())
	}
	if !flags.CSV {
		t.Error("Expected csv to be enabled by the config file")
	}
}

func TestResolveConfig_Environment(t *testing.T) {
	resetViper(t)
	t.Setenv("PIMSLEUR2ANKI_COURSE_LANGUAGE", "czech")

	flags := NewFlags()
	CreateRootCommand(flags)
	InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	config, err := ResolveConfig(flags)
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}
	if config.Language != "czech" {
		t.Errorf("Language = %q, want czech", config.Language)
	}
}

func TestResolveConfig_Invalid(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)
	if err := cmd.ParseFlags([]string{"--language", ""}); err != nil {
		t.Fatal(err)
	}

	if _, err := ResolveConfig(flags); err == nil {
		t.Error("Expected error for empty language")
	}
}

func TestGetAPIKey(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		envName   string
		envKey    string
		configKey string
		expected  string
	}{
		{"openai from environment", "openai", "OPENAI_API_KEY", "env-key", "config-key", "env-key"},
		{"openai from config", "openai", "OPENAI_API_KEY", "", "config-key", "config-key"},
		{"gemini from environment", "gemini", "GEMINI_API_KEY", "env-key", "", "env-key"},
		{"gemini from config", "gemini", "GEMINI_API_KEY", "", "config-key", "config-key"},
		{"unknown provider", "deepl", "DEEPL_API_KEY", "env-key", "config-key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv(tt.envName, tt.envKey)

			if tt.configKey != "" {
				viper.Set("translation."+tt.provider+"_key", tt.configKey)
			}

			if got := GetAPIKey(tt.provider); got != tt.expected {
				t.Errorf("GetAPIKey(%q) = %q, want %q", tt.provider, got, tt.expected)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("output", "/test/output")
	cmd.Flags().Set("course", "German I")
	cmd.Flags().Set("fill-translations", "true")

	// Test that values are bound
	if viper.GetString("output.directory") != "/test/output" {
		t.Errorf("Expected output.directory to be /test/output, got %s", viper.GetString("output.directory"))
	}

	if viper.GetString("course.name") != "German I" {
		t.Errorf("Expected course.name to be German I, got %s", viper.GetString("course.name"))
	}

	if !viper.GetBool("translation.enabled") {
		t.Error("Expected translation.enabled to be true")
	}
}
