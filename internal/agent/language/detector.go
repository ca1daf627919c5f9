// Package language makes sure the assistant answers in Spanish.
package language

import (
	"errors"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// ErrUndetected is returned when no language can be inferred from a text.
var ErrUndetected = errors.New("language could not be detected")

// Detector infers the ISO 639-1 language code of a text.
type Detector interface {
	Detect(text string) (string, error)
}

// TrigramDetector detects languages with whatlanggo's trigram profiles.
type TrigramDetector struct{}

func NewDetector() *TrigramDetector { return &TrigramDetector{} }

func (TrigramDetector) Detect(text string) (string, error) {
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return "", ErrUndetected
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", ErrUndetected
	}
	return code, nil
}

// letterCount counts unicode letters in s.
func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
