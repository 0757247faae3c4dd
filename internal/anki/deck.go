package anki

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"codeberg.org/snonux/pimsleur2anki/internal"
	"codeberg.org/snonux/pimsleur2anki/internal/cards"
	"codeberg.org/snonux/pimsleur2anki/internal/course"
)

// noteNamespace seeds the name-based note GUIDs
var noteNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://codeberg.org/snonux/pimsleur2anki"))

// Note is a card's content bound to the Pimsleur note type
type Note struct {
	GUID   string
	Fields []string // Phrase, Translation, [sound:<file>]
	Tags   []string
	Sound  string // File name of the clip in the sound cache
}

// NewNote derives the note for a flashcard. The GUID depends only on the
// course and the phrase, so re-imports update existing notes.
func NewNote(courseName string, card cards.FlashCard) Note {
	return Note{
		GUID:   uuid.NewSHA1(noteNamespace, []byte(courseName+"\x1f"+card.Phrase)).String(),
		Fields: []string{card.Phrase, card.Translation, FormatSoundField(card.Sound)},
		Tags:   append([]string{}, card.Tags...),
		Sound:  card.Sound,
	}
}

// FormatSoundField formats a sound file reference for Anki
func FormatSoundField(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", filename)
}

// Deck holds the notes of one unit
type Deck struct {
	ID         int64
	Name       string
	UnitNumber int
	Notes      []Note
}

// AddNote appends a note to the deck
func (d *Deck) AddNote(note Note) {
	d.Notes = append(d.Notes, note)
}

// DeckSet maps unit numbers to decks, remembering the order units appeared in
type DeckSet struct {
	decks map[int]*Deck
	order []int
}

// Get returns the deck of a unit
func (s *DeckSet) Get(unitNumber int) (*Deck, bool) {
	d, ok := s.decks[unitNumber]
	return d, ok
}

// Decks returns the decks in the order their units first appeared
func (s *DeckSet) Decks() []*Deck {
	result := make([]*Deck, 0, len(s.order))
	for _, unit := range s.order {
		result = append(result, s.decks[unit])
	}
	return result
}

// Len returns the number of decks
func (s *DeckSet) Len() int {
	return len(s.order)
}

// NoteCount returns the number of notes across all decks
func (s *DeckSet) NoteCount() int {
	n := 0
	for _, d := range s.decks {
		n += len(d.Notes)
	}
	return n
}

// BuildDecks groups the notes of all cards into one deck per unit
func BuildDecks(cfg *course.Config, collection *cards.Collection) *DeckSet {
	set := &DeckSet{decks: make(map[int]*Deck)}

	for _, card := range collection.Cards() {
		deck, ok := set.decks[card.UnitNumber]
		if !ok {
			deck = &Deck{
				ID:         DeckID(cfg, card.UnitNumber),
				Name:       cfg.DeckName(card.UnitNumber),
				UnitNumber: card.UnitNumber,
			}
			set.decks[card.UnitNumber] = deck
			set.order = append(set.order, card.UnitNumber)
		}
		deck.AddNote(NewNote(cfg.CourseName, card))
	}

	return set
}

// DeckID returns the id of a unit's deck: a hash of course name and unit,
// or a fresh random id when the config asks for one
func DeckID(cfg *course.Config, unitNumber int) int64 {
	if cfg.RandomDeckIDs {
		return internal.MinDeckID + rand.Int63n(internal.MaxDeckID-internal.MinDeckID)
	}
	return internal.StableID(cfg.CourseName, fmt.Sprintf("%d", unitNumber))
}
