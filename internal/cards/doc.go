// Package cards turns the exercises of a lesson export into flashcards.
// Quick-match and flash-card entries are read in document order and
// deduplicated by phrase: the first entry for a phrase wins and decides the
// unit its card belongs to. The audio clip of every surviving entry is fetched
// before its card is created.
package cards
