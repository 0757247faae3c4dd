package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/pimsleur2anki/internal/testutil"
)

func TestArchiveSounds(t *testing.T) {
	soundsDir := testutil.CreateSoundCache(t, "a.mp3", "b%20c.mp3")
	dataDir := filepath.Dir(soundsDir)

	var out bytes.Buffer
	archivePath, err := ArchiveSounds(soundsDir, &out)
	if err != nil {
		t.Fatalf("ArchiveSounds failed: %v", err)
	}

	// Check that sounds directory no longer exists
	testutil.AssertFileNotExists(t, soundsDir)

	if filepath.Dir(archivePath) != filepath.Join(dataDir, "archive") {
		t.Errorf("Archive created in unexpected place: %s", archivePath)
	}

	// Verify the archived directory name (sounds-YYYYMMDD-HHMMSS)
	archivedName := filepath.Base(archivePath)
	if !strings.HasPrefix(archivedName, "sounds-") {
		t.Errorf("Archived directory name doesn't start with 'sounds-': %s", archivedName)
	}
	if parts := strings.Split(archivedName, "-"); len(parts) < 3 {
		t.Errorf("Invalid archive name format: %s", archivedName)
	}

	// Check that archived files exist
	testutil.AssertFileContent(t, filepath.Join(archivePath, "a.mp3"), testutil.MP3Bytes("a.mp3"))
	testutil.AssertFileExists(t, filepath.Join(archivePath, "b%20c.mp3"))

	if !strings.Contains(out.String(), archivePath) {
		t.Errorf("Expected archive path in output, got %q", out.String())
	}
}

func TestArchiveSounds_NonExistentDirectory(t *testing.T) {
	nonExistentDir := filepath.Join(t.TempDir(), "sounds")

	_, err := ArchiveSounds(nonExistentDir, &bytes.Buffer{})
	if err == nil {
		t.Fatal("Expected error for non-existent directory")
	}

	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestArchiveSounds_MultipleArchives(t *testing.T) {
	dataDir := t.TempDir()
	soundsDir := filepath.Join(dataDir, "sounds")

	// Archive twice to ensure unique names
	for i := 0; i < 2; i++ {
		testutil.CreateTestFile(t, filepath.Join(soundsDir, "clip.mp3"), testutil.MP3Bytes("clip.mp3"))

		// Small delay to ensure different timestamps
		if i == 1 {
			time.Sleep(10 * time.Millisecond)
		}

		if _, err := ArchiveSounds(soundsDir, &bytes.Buffer{}); err != nil {
			t.Fatalf("ArchiveSounds failed on iteration %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dataDir, "archive"))
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}

	if entries[0].Name() == entries[1].Name() {
		t.Error("Archive names are not unique")
	}
}
