// Package anki builds Anki decks from flashcards and writes them as an .apkg
// package: a zip archive holding a collection.anki2 SQLite database, a media
// mapping and the numbered media files.
package anki
