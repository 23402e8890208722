package storage

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var punctuation = regexp.MustCompile(`[,.":'()\[\]^;!¡¿?]`)

// Fold lowercases s and strips diacritics so "Pádel" and "padel" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Words folds s, removes punctuation and splits it on whitespace.
func Words(s string) []string {
	return strings.Fields(punctuation.ReplaceAllString(Fold(s), ""))
}

// likePattern wraps s for a LIKE ... ESCAPE '\' substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
