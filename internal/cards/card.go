package cards

// FlashCard is a single phrase with its translation and audio clip.
// Two cards with the same Phrase are the same card.
type FlashCard struct {
	Phrase      string   // Phrase in the course language
	Translation string   // Translation into the learner's language
	Sound       string   // File name of the clip in the sound cache
	UnitNumber  int      // Unit the card was first seen in
	Tags        []string // Anki tags, never containing spaces
}

// WithTranslation returns a copy of the card with another translation
func (c FlashCard) WithTranslation(translation string) FlashCard {
	c.Tags = append([]string(nil), c.Tags...)
	c.Translation = translation
	return c
}

// Collection is an ordered set of cards keyed by phrase.
// Iteration follows the order cards were first added.
type Collection struct {
	index map[string]int
	cards []FlashCard
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{
		index: make(map[string]int),
		cards: make([]FlashCard, 0),
	}
}

// Contains reports whether a card with this phrase was already added
func (c *Collection) Contains(phrase string) bool {
	_, ok := c.index[phrase]
	return ok
}

// Add inserts the card unless one with the same phrase exists.
// It reports whether the card was added.
func (c *Collection) Add(card FlashCard) bool {
	if c.Contains(card.Phrase) {
		return false
	}
	if card.Tags == nil {
		card.Tags = []string{}
	}
	c.index[card.Phrase] = len(c.cards)
	c.cards = append(c.cards, card)
	return true
}

// Get returns the card for a phrase
func (c *Collection) Get(phrase string) (FlashCard, bool) {
	i, ok := c.index[phrase]
	if !ok {
		return FlashCard{}, false
	}
	return c.cards[i], true
}

// Len returns the number of cards
func (c *Collection) Len() int {
	return len(c.cards)
}

// Cards returns the cards in insertion order
func (c *Collection) Cards() []FlashCard {
	result := make([]FlashCard, len(c.cards))
	copy(result, c.cards)
	return result
}

// Map returns a new collection with fn applied to every card. A card whose
// phrase is changed by fn keeps its position but may collide with a later one;
// in that case the earlier card wins.
func (c *Collection) Map(fn func(FlashCard) (FlashCard, error)) (*Collection, error) {
	result := NewCollection()
	for _, card := range c.cards {
		mapped, err := fn(card)
		if err != nil {
			return nil, err
		}
		result.Add(mapped)
	}
	return result, nil
}

// Stats returns the number of cards, cards with tags and cards without translation
func (c *Collection) Stats() (total, tagged, untranslated int) {
	total = len(c.cards)
	for _, card := range c.cards {
		if len(card.Tags) > 0 {
			tagged++
		}
		if card.Translation == "" {
			untranslated++
		}
	}
	return
}
