package cards

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/snonux/pimsleur2anki/internal/practices"
)

// SoundFetcher makes a clip available locally and returns its file name
type SoundFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extract walks the units of doc and returns the deduplicated cards.
// Within a unit quick-matches are read before flash-cards.
func Extract(ctx context.Context, doc *practices.Document, fetcher SoundFetcher) (*Collection, error) {
	cards := NewCollection()

	for _, unit := range doc.Units {
		if unit.HasQuickMatch {
			for _, qm := range unit.QuickMatches {
				phrase := qm.Answer
				if cards.Contains(phrase) {
					continue
				}

				var tags []string
				if unit.HasSkills {
					skills, err := qm.Skills()
					if err != nil {
						return nil, fmt.Errorf("unit %d: %w", unit.UnitNumber, err)
					}
					tags = SkillTags(skills)
				}

				sound, err := fetchSound(ctx, fetcher, unit.UnitNumber, qm.SoundURL)
				if err != nil {
					return nil, err
				}

				cards.Add(FlashCard{
					Phrase:      phrase,
					Translation: qm.Question,
					Sound:       sound,
					UnitNumber:  unit.UnitNumber,
					Tags:        tags,
				})
			}
		}

		if unit.HasFlashCard {
			for _, fc := range unit.FlashCards {
				if cards.Contains(fc.Language) {
					continue
				}

				sound, err := fetchSound(ctx, fetcher, unit.UnitNumber, fc.SoundURL)
				if err != nil {
					return nil, err
				}

				cards.Add(FlashCard{
					Phrase:      fc.Language,
					Translation: fc.Translation,
					Sound:       sound,
					UnitNumber:  unit.UnitNumber,
				})
			}
		}
	}

	return cards, nil
}

func fetchSound(ctx context.Context, fetcher SoundFetcher, unitNumber int, soundURL func() (string, error)) (string, error) {
	url, err := soundURL()
	if err != nil {
		return "", fmt.Errorf("unit %d: %w", unitNumber, err)
	}

	sound, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("unit %d: %w", unitNumber, err)
	}
	return sound, nil
}

// SkillTags converts skill names into Anki tags, which cannot contain spaces
func SkillTags(skills []string) []string {
	tags := make([]string, 0, len(skills))
	for _, skill := range skills {
		tags = append(tags, strings.ReplaceAll(skill, " ", "_"))
	}
	return tags
}
