package render

import (
	"strings"
	"unicode"
)

// Leading articles ignored when ordering titles, so that "The Witcher"
// files under W. English and French forms cover the scanner's locales.
var leadingArticles = []string{
	"the ", "a ", "an ",
	"le ", "la ", "les ", "un ", "une ", "des ",
}

// sortKey normalizes a display name for ordering: lowercase, leading
// article removed, symbols and punctuation dropped.
func sortKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(key, "l'") {
		key = key[2:]
	}
	for _, article := range leadingArticles {
		if strings.HasPrefix(key, article) {
			key = key[len(article):]
			break
		}
	}

	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
