package helper

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var knownFormTypes = map[string]string{
	"graduate petition": "petition",
	"term withdrawal":   "withdrawal",
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// fold strips diacritics and lowercases.
func fold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSpace(b.String())
}

// FormTypeCode derives the short type stored on submission identifiers.
// Known names map to fixed codes, multi-word names to their acronym, anything
// else to its first 10 characters.
func FormTypeCode(templateName string) string {
	name := fold(templateName)
	name = strings.TrimSuffix(name, " form")
	for prefix, code := range knownFormTypes {
		if strings.HasPrefix(name, prefix) {
			return code
		}
	}
	words := strings.Fields(nonWord.ReplaceAllString(name, " "))
	if len(words) > 1 {
		var b strings.Builder
		for _, w := range words {
			b.WriteByte(w[0])
		}
		return b.String()
	}
	joined := strings.Join(words, "")
	if len(joined) > 10 {
		joined = joined[:10]
	}
	return joined
}

// SnakeName turns a display name into a file-safe snake_case stem.
func SnakeName(name string) string {
	return strings.Trim(nonWord.ReplaceAllString(fold(name), "_"), "_")
}
