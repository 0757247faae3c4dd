// Package processor runs one conversion of a lesson export into an Anki
// package. It loads the export, extracts the cards while downloading their
// sound clips, optionally fills in missing translations, and writes the
// package together with an optional CSV copy.
package processor
