package entry

import "strings"

// Frequency bands. The heuristic is a coarse proxy for corpus
// frequency: function words rank highest, then shorter words rank
// above longer ones. If a real corpus-derived rank ever becomes
// available it should replace this scoring outright; the two scales
// must not be blended.
const (
	FrequencyFunctionWord = 10000
	FrequencyVeryShort    = 5000
	FrequencyShort        = 3000
	FrequencyMedium       = 1000
	FrequencyLong         = 500
)

// functionWords are articles, pronouns and prepositions per language.
// Any exact case-insensitive match scores FrequencyFunctionWord.
var functionWords = map[string][]string{
	"en": {"the", "a", "an", "i", "you", "he", "she", "it", "we", "they", "of", "to", "in", "on", "at", "for", "with", "by", "from", "and", "or", "but", "not", "is", "are", "was", "be"},
	"es": {"el", "la", "los", "las", "un", "una", "yo", "tú", "él", "ella", "nosotros", "ellos", "de", "a", "en", "con", "por", "para", "y", "o", "no", "es", "son"},
	"fr": {"le", "la", "les", "un", "une", "des", "je", "tu", "il", "elle", "nous", "vous", "ils", "de", "à", "en", "avec", "pour", "par", "et", "ou", "ne", "pas", "est"},
	"de": {"der", "die", "das", "ein", "eine", "ich", "du", "er", "sie", "es", "wir", "ihr", "von", "zu", "in", "auf", "mit", "für", "und", "oder", "nicht", "ist", "sind"},
	"it": {"il", "lo", "la", "i", "gli", "le", "un", "una", "io", "tu", "lui", "lei", "noi", "voi", "loro", "di", "a", "in", "con", "per", "e", "o", "non", "è"},
	"pt": {"o", "a", "os", "as", "um", "uma", "eu", "tu", "ele", "ela", "nós", "eles", "de", "em", "com", "por", "para", "e", "ou", "não", "é", "são"},
	"ru": {"я", "ты", "он", "она", "оно", "мы", "вы", "они", "в", "на", "с", "к", "от", "из", "и", "или", "не", "это"},
}

// Score returns the heuristic frequency rank for a headword. The
// function word lists for both sides of the language pair are
// consulted so that e.g. "the" ranks highest in an en-es pack whether
// it appears as a headword or not.
func Score(headword, sourceLang, targetLang string) int {
	w := strings.ToLower(headword)
	for _, lang := range []string{sourceLang, targetLang} {
		for _, fw := range functionWords[lang] {
			if w == fw {
				return FrequencyFunctionWord
			}
		}
	}

	switch n := len([]rune(w)); {
	case n <= 3:
		return FrequencyVeryShort
	case n <= 5:
		return FrequencyShort
	case n <= 7:
		return FrequencyMedium
	default:
		return FrequencyLong
	}
}
