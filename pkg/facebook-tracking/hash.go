package facebook_tracking

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fb-s2s/dto"
)

// Hash normalizes value (trim, lowercase) and returns its hex encoded SHA-256 digest.
// The hex alphabet is ASCII so the digest is already valid UTF-8.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(normalize(value)))
	return hex.EncodeToString(sum[:])
}

// normalize trims the ECMAScript whitespace set and applies full Unicode lowercasing,
// including the final sigma rule.
func normalize(value string) string {
	// a Caser is stateful, so one per call
	return cases.Lower(language.Und).String(strings.TrimFunc(value, isTrimSpace))
}

// isTrimSpace matches unicode.IsSpace plus the byte order mark, minus NEL.
func isTrimSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

func identity(value string) string {
	return value
}

func copyIfPresent(target map[string]string, raw dto.RawInput, fieldName string, transform func(string) string) {
	if v, ok := raw.Lookup(fieldName); ok {
		target[fieldName] = transform(v)
	}
}

// SetHashedField sets target[fieldName] to the hash of the raw value when it is defined and non-empty.
func SetHashedField(target map[string]string, raw dto.RawInput, fieldName string) {
	copyIfPresent(target, raw, fieldName, Hash)
}

// SetField copies the raw value verbatim when it is defined and non-empty.
func SetField(target map[string]string, raw dto.RawInput, fieldName string) {
	copyIfPresent(target, raw, fieldName, identity)
}
