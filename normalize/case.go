package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type wordMode int

const (
	modeBoundary wordMode = iota
	modeLower
	modeUpper
)

// Words splits an identifier into words. Any rune that is neither a letter nor
// a digit separates words; inside a run, a word ends before an upper-case
// letter that follows a lower-case one, and before the last capital of an
// upper-case run that is followed by a lower-case letter. Digits continue the
// current word, so "R8G8B8A8" stays whole and "Extent2D" splits as
// "Extent2", "D".
func Words(s string) []string {
	var words []string
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, part := range parts {
		runes := []rune(part)
		start := 0
		mode := modeBoundary
		for i, c := range runes {
			next := mode
			switch {
			case unicode.IsLower(c):
				next = modeLower
			case unicode.IsUpper(c):
				next = modeUpper
			}
			if i+1 < len(runes) {
				peek := runes[i+1]
				if next == modeLower && unicode.IsUpper(peek) {
					words = append(words, string(runes[start:i+1]))
					start = i + 1
					mode = modeBoundary
					continue
				}
				if mode == modeUpper && unicode.IsUpper(c) && unicode.IsLower(peek) && i > start {
					words = append(words, string(runes[start:i]))
					start = i
					mode = modeBoundary
					continue
				}
			}
			mode = next
		}
		words = append(words, string(runes[start:]))
	}
	return words
}

// Snake converts to lower_snake_case.
func Snake(s string) string {
	lower := cases.Lower(language.Und)
	words := Words(s)
	for i, w := range words {
		words[i] = lower.String(w)
	}
	return strings.Join(words, "_")
}

// Shouty converts to SHOUTY_SNAKE_CASE.
func Shouty(s string) string {
	upper := cases.Upper(language.Und)
	words := Words(s)
	for i, w := range words {
		words[i] = upper.String(w)
	}
	return strings.Join(words, "_")
}

// Camel converts to UpperCamelCase.
func Camel(s string) string {
	lower := cases.Lower(language.Und)
	var sb strings.Builder
	for _, w := range Words(s) {
		sb.WriteString(capitalize(w, lower))
	}
	return sb.String()
}

// LowerCamel converts to lowerCamelCase.
func LowerCamel(s string) string {
	lower := cases.Lower(language.Und)
	var sb strings.Builder
	for i, w := range Words(s) {
		if i == 0 {
			sb.WriteString(lower.String(w))
			continue
		}
		sb.WriteString(capitalize(w, lower))
	}
	return sb.String()
}

func capitalize(w string, lower cases.Caser) string {
	runes := []rune(lower.String(w))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	// a letter right after a digit starts a new visual word: 1d -> 1D
	for i := 1; i < len(runes); i++ {
		if unicode.IsDigit(runes[i-1]) && unicode.IsLetter(runes[i]) {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}

// IsShouty reports whether s is written in SHOUTY_SNAKE_CASE: upper-case
// letters, digits and underscores with at least one letter.
func IsShouty(s string) bool {
	hasUpper := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r) || r == '_':
		default:
			return false
		}
	}
	return hasUpper
}
