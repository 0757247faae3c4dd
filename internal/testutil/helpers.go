package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateSoundCache creates a sound cache directory pre-populated with the
// given file names
func CreateSoundCache(t *testing.T, names ...string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "data", "sounds")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create sound cache: %v", err)
	}

	for _, name := range names {
		CreateTestFile(t, filepath.Join(dir, name), MP3Bytes(name))
	}

	return dir
}

// WriteExport marshals doc as a lesson export into dir and returns its path
func WriteExport(t *testing.T, dir, language string, doc interface{}) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal export: %v", err)
	}

	path := filepath.Join(dir, "practices_"+language+".json")
	CreateTestFile(t, path, data)
	return path
}

// MP3Bytes returns fake audio content that is unique per name
func MP3Bytes(name string) []byte {
	return append([]byte{0xFF, 0xFB, 0x90, 0x00}, []byte(name)...)
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
