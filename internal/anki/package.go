package anki

import (
	"path/filepath"
)

// Package is everything that goes into one .apkg file
type Package struct {
	Model      *Model
	Decks      []*Deck
	MediaFiles []string // Local paths of the referenced sound files
}

// Assemble collects the decks and the sound file of every note
func Assemble(decks *DeckSet, soundsDir string) *Package {
	pkg := &Package{
		Model:      PimsleurModel(),
		Decks:      decks.Decks(),
		MediaFiles: make([]string, 0, decks.NoteCount()),
	}

	for _, deck := range pkg.Decks {
		for _, note := range deck.Notes {
			if note.Sound == "" {
				continue
			}
			pkg.MediaFiles = append(pkg.MediaFiles, filepath.Join(soundsDir, note.Sound))
		}
	}

	return pkg
}

// WriteToFile writes the package as an .apkg file
func (p *Package) WriteToFile(outputPath string) error {
	return newAPKGWriter(p).write(outputPath)
}

// Stats returns the number of decks, notes and media files
func (p *Package) Stats() (decks, notes, media int) {
	decks = len(p.Decks)
	for _, d := range p.Decks {
		notes += len(d.Notes)
	}
	media = len(p.MediaFiles)
	return
}
