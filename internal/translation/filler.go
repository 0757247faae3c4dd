package translation

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/pimsleur2anki/internal/cards"
)

// Filler translates the cards that came without a translation
type Filler struct {
	translator Translator
	cache      *TranslationCache
	out        io.Writer
}

// NewFiller creates a filler that consults cache before calling the
// translator and records new translations in it
func NewFiller(translator Translator, cache *TranslationCache, out io.Writer) *Filler {
	if cache == nil {
		cache = NewTranslationCache()
	}
	return &Filler{
		translator: translator,
		cache:      cache,
		out:        out,
	}
}

// Fill returns a collection in which empty translations are filled in.
// Translation failures are reported as warnings and leave the card as is;
// only a canceled context aborts the run.
func (f *Filler) Fill(ctx context.Context, collection *cards.Collection) (*cards.Collection, int, error) {
	filled := 0

	result, err := collection.Map(func(card cards.FlashCard) (cards.FlashCard, error) {
		if card.Translation != "" {
			return card, nil
		}
		if err := ctx.Err(); err != nil {
			return card, err
		}

		if cached, ok := f.cache.Get(card.Phrase); ok {
			filled++
			return card.WithTranslation(cached), nil
		}

		fmt.Fprintf(f.out, "  Translating '%s' with %s...\n", card.Phrase, f.translator.Name())
		translation, err := f.translator.Translate(ctx, card.Phrase)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return card, err
			}
			if errors.Is(err, gobreaker.ErrOpenState) {
				fmt.Fprintf(f.out, "  Warning: %s unavailable, leaving '%s' untranslated\n", f.translator.Name(), card.Phrase)
			} else {
				fmt.Fprintf(f.out, "  Warning: Translation failed: %v\n", err)
			}
			return card, nil
		}
		if translation == "" {
			return card, nil
		}

		f.cache.Add(card.Phrase, translation)
		filled++
		return card.WithTranslation(translation), nil
	})
	if err != nil {
		return nil, 0, err
	}

	return result, filled, nil
}
