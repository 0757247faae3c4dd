package internal

import (
	"crypto/md5"
	"encoding/binary"
	"strings"
	"unicode"
)

// Deck ids live in [1<<30, 1<<31) so they never collide with Anki's
// built-in "Default" deck (id 1) and stay within a signed 32 bit range.
const (
	MinDeckID int64 = 1 << 30
	MaxDeckID int64 = 1 << 31
)

// StableID derives a reproducible id in [MinDeckID, MaxDeckID) from the given
// parts. The same parts always yield the same id.
func StableID(parts ...string) int64 {
	hash := md5.Sum([]byte(strings.Join(parts, "\x1f")))
	n := binary.BigEndian.Uint64(hash[:8])
	return MinDeckID + int64(n%uint64(MaxDeckID-MinDeckID))
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isAlphaNumeric checks if a rune is a letter or digit in any script
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
