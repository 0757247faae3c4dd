package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// WriteCSV writes the notes of the package as a CSV file for Anki's text
// importer. Media is not embedded; the Sound column references files that
// must already be in Anki's collection.media folder.
func (p *Package) WriteCSV(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	headers := append(append([]string{}, p.Model.Fields...), "Tags", "Deck")
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, deck := range p.Decks {
		for _, note := range deck.Notes {
			record := append(append([]string{}, note.Fields...), strings.Join(note.Tags, " "), deck.Name)
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write note: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return file.Close()
}
