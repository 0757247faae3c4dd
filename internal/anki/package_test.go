package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"codeberg.org/snonux/pimsleur2anki/internal/cards"
	"codeberg.org/snonux/pimsleur2anki/internal/course"
	"codeberg.org/snonux/pimsleur2anki/internal/testutil"
)

func testPackage(t *testing.T) (*Package, string) {
	t.Helper()

	soundsDir := testutil.CreateSoundCache(t, "a.mp3", "nie.mp3", "tak.mp3", "prosze.mp3")
	decks := BuildDecks(course.DefaultConfig(), testCollection())
	return Assemble(decks, soundsDir), soundsDir
}

// extractFile copies a zip entry into dir and returns its path
func extractFile(t *testing.T, reader *zip.ReadCloser, name, dir string) string {
	t.Helper()

	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open %s: %v", name, err)
		}
		defer rc.Close()

		target := filepath.Join(dir, name)
		out, err := os.Create(target)
		if err != nil {
			t.Fatalf("Failed to create %s: %v", target, err)
		}
		defer out.Close()

		if _, err := io.Copy(out, rc); err != nil {
			t.Fatalf("Failed to extract %s: %v", name, err)
		}
		return target
	}

	t.Fatalf("%s not found in package", name)
	return ""
}

func TestAssemble(t *testing.T) {
	pkg, soundsDir := testPackage(t)

	if pkg.Model == nil || pkg.Model.ID != PimsleurModelID {
		t.Error("Package should use the Pimsleur model")
	}

	want := []string{
		filepath.Join(soundsDir, "a.mp3"),
		filepath.Join(soundsDir, "tak.mp3"),
		filepath.Join(soundsDir, "nie.mp3"),
		filepath.Join(soundsDir, "prosze.mp3"),
	}
	if !reflect.DeepEqual(pkg.MediaFiles, want) {
		t.Errorf("MediaFiles = %v, want %v", pkg.MediaFiles, want)
	}

	decks, notes, media := pkg.Stats()
	if decks != 3 || notes != 4 || media != 4 {
		t.Errorf("Stats() = %d, %d, %d, want 3, 4, 4", decks, notes, media)
	}
}

func TestWriteToFile(t *testing.T) {
	pkg, _ := testPackage(t)
	outDir := t.TempDir()
	outputPath := filepath.Join(outDir, "pimsleur-polish-1.apkg")

	if err := pkg.WriteToFile(outputPath); err != nil {
		t.Fatalf("WriteToFile() error = %v", err)
	}
	testutil.AssertFileNotExists(t, outputPath+".part")

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open APKG as zip: %v", err)
	}
	defer reader.Close()

	found := make(map[string]bool)
	for _, f := range reader.File {
		found[f.Name] = true
	}
	for _, name := range []string{"collection.anki2", "media", "0", "1", "2", "3"} {
		if !found[name] {
			t.Errorf("Required file %q not found in APKG", name)
		}
	}

	// Media mapping names every clip exactly once
	mediaPath := extractFile(t, reader, "media", outDir)
	data, err := os.ReadFile(mediaPath)
	if err != nil {
		t.Fatalf("Failed to read media mapping: %v", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		t.Fatalf("Invalid media mapping: %v", err)
	}
	names := make([]string, 0, len(mapping))
	for _, name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	if !reflect.DeepEqual(names, []string{"a.mp3", "nie.mp3", "prosze.mp3", "tak.mp3"}) {
		t.Errorf("Unexpected media names %v", names)
	}

	dbPath := extractFile(t, reader, "collection.anki2", outDir)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var noteCount, cardCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&noteCount); err != nil {
		t.Fatalf("Failed to count notes: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cardCount); err != nil {
		t.Fatalf("Failed to count cards: %v", err)
	}
	if noteCount != 4 {
		t.Errorf("Expected 4 notes, got %d", noteCount)
	}
	if cardCount != 12 {
		t.Errorf("Expected 12 cards (3 per note), got %d", cardCount)
	}

	var flds, tags string
	if err := db.QueryRow("SELECT flds, tags FROM notes WHERE sfld = ?", "nie").Scan(&flds, &tags); err != nil {
		t.Fatalf("Failed to load note: %v", err)
	}
	if flds != "nie\x1fno\x1f[sound:nie.mp3]" {
		t.Errorf("Unexpected fields %q", flds)
	}
	if tags != " basic_answers " {
		t.Errorf("Unexpected tags %q", tags)
	}

	// Every card lives in the deck of its unit
	unit2, _ := BuildDecks(course.DefaultConfig(), testCollection()).Get(2)
	var did int64
	err = db.QueryRow(`SELECT DISTINCT c.did FROM cards c JOIN notes n ON n.id = c.nid WHERE n.sfld = ?`, "nie").Scan(&did)
	if err != nil {
		t.Fatalf("Failed to load card deck: %v", err)
	}
	if did != unit2.ID {
		t.Errorf("Card deck = %d, want %d", did, unit2.ID)
	}

	var decksJSON string
	if err := db.QueryRow("SELECT decks FROM col").Scan(&decksJSON); err != nil {
		t.Fatalf("Failed to load decks: %v", err)
	}
	for _, name := range []string{"Pimsleur Polish I::Unit 01", "Pimsleur Polish I::Unit 02", "Pimsleur Polish I::Unit 12"} {
		if !strings.Contains(decksJSON, name) {
			t.Errorf("Deck %q missing from collection", name)
		}
	}
}

func TestWriteToFile_SharedSound(t *testing.T) {
	soundsDir := testutil.CreateSoundCache(t, "shared.mp3")
	c := cards.NewCollection()
	c.Add(cards.FlashCard{Phrase: "dzień dobry", Translation: "good morning", Sound: "shared.mp3", UnitNumber: 1})
	c.Add(cards.FlashCard{Phrase: "Dzień dobry!", Translation: "Good morning!", Sound: "shared.mp3", UnitNumber: 1})

	pkg := Assemble(BuildDecks(course.DefaultConfig(), c), soundsDir)
	if len(pkg.MediaFiles) != 2 {
		t.Errorf("Expected one media entry per note, got %d", len(pkg.MediaFiles))
	}

	outputPath := filepath.Join(t.TempDir(), "out.apkg")
	if err := pkg.WriteToFile(outputPath); err != nil {
		t.Fatalf("WriteToFile() error = %v", err)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open APKG: %v", err)
	}
	defer reader.Close()

	for _, f := range reader.File {
		if f.Name == "1" {
			t.Error("Shared clip was stored twice")
		}
	}
}

func TestWriteToFile_MissingMedia(t *testing.T) {
	soundsDir := testutil.CreateSoundCache(t, "a.mp3")
	decks := BuildDecks(course.DefaultConfig(), testCollection())
	pkg := Assemble(decks, soundsDir)

	outputPath := filepath.Join(t.TempDir(), "out.apkg")
	if err := pkg.WriteToFile(outputPath); err == nil {
		t.Fatal("Expected error for missing sound files")
	}
	testutil.AssertFileNotExists(t, outputPath)
}

func TestWriteCSV(t *testing.T) {
	pkg, _ := testPackage(t)
	outputPath := filepath.Join(t.TempDir(), "pimsleur-polish-1.csv")

	if err := pkg.WriteCSV(outputPath); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	file, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected header and 4 rows, got %d", len(records))
	}

	if !reflect.DeepEqual(records[0], []string{"Phrase", "Translation", "Sound", "Tags", "Deck"}) {
		t.Errorf("Unexpected header %v", records[0])
	}
	want := []string{"nie", "no", "[sound:nie.mp3]", "basic_answers", "Pimsleur Polish I::Unit 02"}
	if !reflect.DeepEqual(records[3], want) {
		t.Errorf("Row 3 = %v, want %v", records[3], want)
	}
}
