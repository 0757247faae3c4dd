package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// defaultDeckID is Anki's built-in "Default" deck
const defaultDeckID int64 = 1

// apkgWriter serializes a Package into the .apkg format
type apkgWriter struct {
	pkg          *Package
	now          time.Time
	mediaFiles   map[string]int // maps file name to media number
	mediaCounter int
}

func newAPKGWriter(pkg *Package) *apkgWriter {
	return &apkgWriter{
		pkg:        pkg,
		now:        time.Now(),
		mediaFiles: make(map[string]int),
	}
}

// write builds the package in a temporary directory and moves the finished
// archive to outputPath, so a failed run never leaves a truncated package
func (w *apkgWriter) write(outputPath string) error {
	tempDir, err := os.MkdirTemp("", "pimsleur_apkg_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := w.copyMediaFiles(tempDir); err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}

	if err := w.createMediaMapping(tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := w.createDatabase(dbPath); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	partial := outputPath + ".part"
	if err := w.createZipPackage(tempDir, partial); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to create zip package: %w", err)
	}

	return os.Rename(partial, outputPath)
}

// createDatabase creates the Anki SQLite database
func (w *apkgWriter) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := w.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := w.insertNotesAndCards(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}
	return tx.Commit()
}

// createTables creates the schema of an Anki 2.1 collection (version 11)
func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE col (
			id integer PRIMARY KEY,
			crt integer NOT NULL,
			mod integer NOT NULL,
			scm integer NOT NULL,
			ver integer NOT NULL,
			dty integer NOT NULL,
			usn integer NOT NULL,
			ls integer NOT NULL,
			conf text NOT NULL,
			models text NOT NULL,
			decks text NOT NULL,
			dconf text NOT NULL,
			tags text NOT NULL
		)`,
		`CREATE TABLE notes (
			id integer PRIMARY KEY,
			guid text NOT NULL,
			mid integer NOT NULL,
			mod integer NOT NULL,
			usn integer NOT NULL,
			tags text NOT NULL,
			flds text NOT NULL,
			sfld text NOT NULL,
			csum integer NOT NULL,
			flags integer NOT NULL,
			data text NOT NULL
		)`,
		`CREATE TABLE cards (
			id integer PRIMARY KEY,
			nid integer NOT NULL,
			did integer NOT NULL,
			ord integer NOT NULL,
			mod integer NOT NULL,
			usn integer NOT NULL,
			type integer NOT NULL,
			queue integer NOT NULL,
			due integer NOT NULL,
			ivl integer NOT NULL,
			factor integer NOT NULL,
			reps integer NOT NULL,
			lapses integer NOT NULL,
			left integer NOT NULL,
			odue integer NOT NULL,
			odid integer NOT NULL,
			flags integer NOT NULL,
			data text NOT NULL
		)`,
		`CREATE TABLE revlog (
			id integer PRIMARY KEY,
			cid integer NOT NULL,
			usn integer NOT NULL,
			ease integer NOT NULL,
			ivl integer NOT NULL,
			lastIvl integer NOT NULL,
			factor integer NOT NULL,
			time integer NOT NULL,
			type integer NOT NULL
		)`,
		`CREATE TABLE graves (
			usn integer NOT NULL,
			oid integer NOT NULL,
			type integer NOT NULL
		)`,
		`CREATE INDEX ix_notes_csum ON notes (csum)`,
		`CREATE INDEX ix_notes_usn ON notes (usn)`,
		`CREATE INDEX ix_cards_usn ON cards (usn)`,
		`CREATE INDEX ix_cards_nid ON cards (nid)`,
		`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
		`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
		`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func deckConfig(id int64, name string, mod int64) map[string]interface{} {
	return map[string]interface{}{
		"id":               id,
		"name":             name,
		"mod":              mod,
		"desc":             "",
		"collapsed":        false,
		"dyn":              0,
		"conf":             1,
		"usn":              -1,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
		"browserCollapsed": false,
		"extendNew":        10,
		"extendRev":        50,
	}
}

// insertCollection inserts the collection row holding decks, note type and options
func (w *apkgWriter) insertCollection(db *sql.DB) error {
	now := w.now.Unix()

	decks := map[string]interface{}{
		fmt.Sprintf("%d", defaultDeckID): deckConfig(defaultDeckID, "Default", now),
	}
	modelDeck := defaultDeckID
	for i, d := range w.pkg.Decks {
		decks[fmt.Sprintf("%d", d.ID)] = deckConfig(d.ID, d.Name, now)
		if i == 0 {
			modelDeck = d.ID
		}
	}
	decksJSON, err := json.Marshal(decks)
	if err != nil {
		return err
	}

	models := map[string]interface{}{
		fmt.Sprintf("%d", w.pkg.Model.ID): w.pkg.Model.config(modelDeck, now),
	}
	modelsJSON, err := json.Marshal(models)
	if err != nil {
		return err
	}

	conf := map[string]interface{}{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{defaultDeckID},
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       defaultDeckID,
		"newSpread":     0,
		"dueCounts":     true,
		"collapseTime":  1200,
		"timeLim":       0,
		"schedVer":      1,
		"curModel":      fmt.Sprintf("%d", w.pkg.Model.ID),
		"dayLearnFirst": false,
	}
	confJSON, err := json.Marshal(conf)
	if err != nil {
		return err
	}

	dconf := map[string]interface{}{
		"1": map[string]interface{}{
			"id":   1,
			"name": "Default",
			"dyn":  0,
			"new": map[string]interface{}{
				"delays":        []int{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": 2500,
				"perDay":        20,
				"order":         1,
				"bury":          true,
				"separate":      true,
			},
			"lapse": map[string]interface{}{
				"delays":      []int{10},
				"mult":        0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
			"rev": map[string]interface{}{
				"perDay":   100,
				"ease4":    1.3,
				"fuzz":     0.05,
				"maxIvl":   36500,
				"ivlFct":   1,
				"bury":     true,
				"minSpace": 1,
			},
			"timer":    0,
			"maxTaken": 60,
			"usn":      0,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	}
	dconfJSON, err := json.Marshal(dconf)
	if err != nil {
		return err
	}

	query := `INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.Exec(query,
		1,        // id
		now,      // crt
		now*1000, // mod
		now*1000, // scm
		11,       // ver (schema version)
		0,        // dty
		0,        // usn
		0,        // ls
		string(confJSON),
		string(modelsJSON),
		string(decksJSON),
		string(dconfJSON),
		"{}", // tags
	)
	return err
}

// insertNotesAndCards inserts every note and one card per generated template
func (w *apkgWriter) insertNotesAndCards(tx *sql.Tx) error {
	model := w.pkg.Model
	mod := w.now.Unix()
	// Leave room for one id per template after every note id
	stride := int64(len(model.Templates) + 1)
	nextID := w.now.UnixMilli()
	due := 0

	noteStmt, err := tx.Prepare(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer noteStmt.Close()

	cardStmt, err := tx.Prepare(`INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer cardStmt.Close()

	for _, deck := range w.pkg.Decks {
		for _, note := range deck.Notes {
			noteID := nextID
			nextID += stride
			due++

			sortField := ""
			if len(note.Fields) > 0 {
				sortField = note.Fields[0]
			}
			fields := strings.Join(note.Fields, "\x1f")

			_, err := noteStmt.Exec(
				noteID,                   // id
				note.GUID,                // guid
				model.ID,                 // mid
				mod,                      // mod
				-1,                       // usn
				formatTags(note.Tags),    // tags
				fields,                   // flds
				sortField,                // sfld
				fieldChecksum(sortField), // csum
				0,                        // flags
				"",                       // data
			)
			if err != nil {
				return fmt.Errorf("failed to insert note %q: %w", sortField, err)
			}

			for i, ord := range model.CardOrdinals(note.Fields) {
				_, err := cardStmt.Exec(
					noteID+int64(i)+1, // id
					noteID,            // nid
					deck.ID,           // did
					ord,               // ord (template)
					mod,               // mod
					-1,                // usn
					0,                 // type (0=new)
					0,                 // queue (0=new)
					due,               // due (position of the note for new cards)
					0,                 // ivl
					0,                 // factor
					0,                 // reps
					0,                 // lapses
					0,                 // left
					0,                 // odue
					0,                 // odid
					0,                 // flags
					"",                // data
				)
				if err != nil {
					return fmt.Errorf("failed to insert card %d of %q: %w", ord, sortField, err)
				}
			}
		}
	}

	return nil
}

// copyMediaFiles copies each distinct media file to a numbered file
func (w *apkgWriter) copyMediaFiles(tempDir string) error {
	for _, path := range w.pkg.MediaFiles {
		name := filepath.Base(path)
		if _, exists := w.mediaFiles[name]; exists {
			continue
		}

		targetPath := filepath.Join(tempDir, fmt.Sprintf("%d", w.mediaCounter))
		if err := copyFile(path, targetPath); err != nil {
			return fmt.Errorf("failed to copy %s: %w", path, err)
		}
		w.mediaFiles[name] = w.mediaCounter
		w.mediaCounter++
	}

	return nil
}

// createMediaMapping creates the media mapping JSON file
func (w *apkgWriter) createMediaMapping(tempDir string) error {
	mapping := make(map[string]string)
	for filename, num := range w.mediaFiles {
		mapping[fmt.Sprintf("%d", num)] = filename
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(tempDir, "media"), data, 0644)
}

// createZipPackage creates the .apkg zip file
func (w *apkgWriter) createZipPackage(tempDir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	err = filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(tempDir, path)
		if err != nil {
			return err
		}

		writer, err := archive.Create(relPath)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		archive.Close()
		return err
	}

	if err := archive.Close(); err != nil {
		return err
	}
	return zipFile.Close()
}

// formatTags renders tags the way Anki stores them: space separated with
// a leading and trailing space
func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " " + strings.Join(tags, " ") + " "
}

// fieldChecksum is the first 32 bits of the SHA-1 of the sort field
func fieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}
	return dstFile.Close()
}
