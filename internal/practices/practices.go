// Package practices reads the lesson export of a course: a JSON document
// listing the units of the course together with their quick-match and
// flash-card exercises.
package practices

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the top level of a lesson export
type Document struct {
	Units []Unit `json:"practicesInUnits"`
}

// Unit is one lesson of the course
type Unit struct {
	UnitNumber    int             `json:"unitNumber"`
	HasQuickMatch bool            `json:"hasQuickMatch"`
	HasFlashCard  bool            `json:"hasFlashCard"`
	HasSkills     bool            `json:"hasSkills"`
	QuickMatches  []QuickMatch    `json:"quickMatches"`
	FlashCards    []FlashCardItem `json:"flashCards"`
}

// QuickMatch pairs a prompt cue with an answer cue. The answer's audio
// clip and the skills list are only decoded on request, so entries the
// converter skips are never checked for them.
type QuickMatch struct {
	Question string // question.cue, the translation
	Answer   string // answer.cue, the phrase

	path   string
	raw    map[string]json.RawMessage
	answer map[string]json.RawMessage
}

// FlashCardItem pairs a term in the course language with its translation
type FlashCardItem struct {
	Language    string
	Translation string

	path string
	raw  map[string]json.RawMessage
}

// NewQuickMatch builds an entry as if it had been read from an export.
// A nil skills slice leaves the skills key out.
func NewQuickMatch(question, answer, soundURL string, skills []string) QuickMatch {
	qm := QuickMatch{
		Question: question,
		Answer:   answer,
		raw:      make(map[string]json.RawMessage),
		answer:   map[string]json.RawMessage{"mp3FileName": rawString(soundURL)},
	}
	if skills != nil {
		data, _ := json.Marshal(skills)
		qm.raw["skills"] = data
	}
	return qm
}

// NewFlashCardItem builds an entry as if it had been read from an export
func NewFlashCardItem(language, translation, soundURL string) FlashCardItem {
	return FlashCardItem{
		Language:    language,
		Translation: translation,
		raw:         map[string]json.RawMessage{"mp3FileName": rawString(soundURL)},
	}
}

// SoundURL returns answer.mp3FileName
func (q QuickMatch) SoundURL() (string, error) {
	var url string
	err := decodeKey(q.answer, q.path+".answer", "mp3FileName", &url)
	return url, err
}

// Skills returns the skills list of the entry
func (q QuickMatch) Skills() ([]string, error) {
	var skills []string
	err := decodeKey(q.raw, q.path, "skills", &skills)
	return skills, err
}

// SoundURL returns mp3FileName
func (f FlashCardItem) SoundURL() (string, error) {
	var url string
	err := decodeKey(f.raw, f.path, "mp3FileName", &url)
	return url, err
}

func rawString(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

// MissingKeyError reports a key the export was expected to contain
type MissingKeyError struct {
	Path string // Location of the object, e.g. "practicesInUnits[2].quickMatches[0]"
	Key  string
}

func (e *MissingKeyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("missing key %q", e.Key)
	}
	return fmt.Sprintf("%s: missing key %q", e.Path, e.Key)
}

// Load reads and decodes the lesson export at path
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read practices file: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a lesson export and checks the keys every entry needs to be
// identified. The audio URLs and skills are checked later, when the entry
// is actually converted.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	rawUnits, err := require(top, "", "practicesInUnits")
	if err != nil {
		return nil, err
	}

	var units []map[string]json.RawMessage
	if err := json.Unmarshal(rawUnits, &units); err != nil {
		return nil, fmt.Errorf("practicesInUnits: %w", err)
	}

	doc := &Document{Units: make([]Unit, 0, len(units))}
	for i, raw := range units {
		unit, err := parseUnit(raw, fmt.Sprintf("practicesInUnits[%d]", i))
		if err != nil {
			return nil, err
		}
		doc.Units = append(doc.Units, unit)
	}

	return doc, nil
}

func parseUnit(raw map[string]json.RawMessage, path string) (Unit, error) {
	var unit Unit

	fields := []struct {
		key string
		dst interface{}
	}{
		{"unitNumber", &unit.UnitNumber},
		{"hasQuickMatch", &unit.HasQuickMatch},
		{"hasFlashCard", &unit.HasFlashCard},
		{"hasSkills", &unit.HasSkills},
	}
	for _, f := range fields {
		if err := decodeKey(raw, path, f.key, f.dst); err != nil {
			return unit, err
		}
	}

	if unit.HasQuickMatch {
		var entries []map[string]json.RawMessage
		if err := decodeKey(raw, path, "quickMatches", &entries); err != nil {
			return unit, err
		}
		for j, entry := range entries {
			qm, err := parseQuickMatch(entry, fmt.Sprintf("%s.quickMatches[%d]", path, j))
			if err != nil {
				return unit, err
			}
			unit.QuickMatches = append(unit.QuickMatches, qm)
		}
	}

	if unit.HasFlashCard {
		var entries []map[string]json.RawMessage
		if err := decodeKey(raw, path, "flashCards", &entries); err != nil {
			return unit, err
		}
		for j, entry := range entries {
			fc, err := parseFlashCard(entry, fmt.Sprintf("%s.flashCards[%d]", path, j))
			if err != nil {
				return unit, err
			}
			unit.FlashCards = append(unit.FlashCards, fc)
		}
	}

	return unit, nil
}

func parseQuickMatch(raw map[string]json.RawMessage, path string) (QuickMatch, error) {
	qm := QuickMatch{path: path, raw: raw}

	var question map[string]json.RawMessage
	if err := decodeKey(raw, path, "question", &question); err != nil {
		return qm, err
	}
	if err := decodeKey(raw, path, "answer", &qm.answer); err != nil {
		return qm, err
	}

	if err := decodeKey(question, path+".question", "cue", &qm.Question); err != nil {
		return qm, err
	}
	if err := decodeKey(qm.answer, path+".answer", "cue", &qm.Answer); err != nil {
		return qm, err
	}

	return qm, nil
}

func parseFlashCard(raw map[string]json.RawMessage, path string) (FlashCardItem, error) {
	fc := FlashCardItem{path: path, raw: raw}

	if err := decodeKey(raw, path, "language", &fc.Language); err != nil {
		return fc, err
	}
	if err := decodeKey(raw, path, "translation", &fc.Translation); err != nil {
		return fc, err
	}

	return fc, nil
}

func require(raw map[string]json.RawMessage, path, key string) (json.RawMessage, error) {
	value, ok := raw[key]
	if !ok || string(value) == "null" {
		return nil, &MissingKeyError{Path: path, Key: key}
	}
	return value, nil
}

func decodeKey(raw map[string]json.RawMessage, path, key string, dst interface{}) error {
	value, err := require(raw, path, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("%s.%s: %w", path, key, err)
	}
	return nil
}
