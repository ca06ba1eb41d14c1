package entry

import "strings"

// languageCodes maps English language names and common three-letter
// codes from upstream dictionary catalogs to the two-letter codes used
// for pack ids.
var languageCodes = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"chinese":    "zh",
	"mandarin":   "zh",
	"japanese":   "ja",
	"korean":     "ko",
	"dutch":      "nl",
	"polish":     "pl",
	"turkish":    "tr",
	"greek":      "el",
	"latin":      "la",
	"esperanto":  "eo",
	"czech":      "cs",
	"slovak":     "sk",
	"hungarian":  "hu",
	"finnish":    "fi",
	"swedish":    "sv",
	"norwegian":  "no",
	"danish":     "da",
	"ukrainian":  "uk",
	"bulgarian":  "bg",
	"serbian":    "sr",
	"croatian":   "hr",
	"romanian":   "ro",
	"vietnamese": "vi",
	"thai":       "th",
	"indonesian": "id",
	"hebrew":     "he",
	"persian":    "fa",
	"urdu":       "ur",
	"bengali":    "bn",

	// FreeDict catalogs use ISO-639-3.
	"eng": "en",
	"spa": "es",
	"fra": "fr",
	"deu": "de",
	"ita": "it",
	"por": "pt",
	"rus": "ru",
	"ara": "ar",
	"hin": "hi",
	"zho": "zh",
	"jpn": "ja",
	"kor": "ko",
	"nld": "nl",
	"pol": "pl",
	"tur": "tr",
}

// LanguageCode converts a language name or three-letter code to the
// two-letter code used in pack ids. Already two-letter inputs pass
// through lowercased; unknown names fall back to their first two
// letters, matching how upstream pack names were generated.
func LanguageCode(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := languageCodes[name]; ok {
		return code
	}
	if len(name) == 2 {
		return name
	}
	if len(name) > 2 {
		return name[:2]
	}
	return name
}

// PairID builds the canonical "{source}-{target}" pack identifier.
func PairID(source, target string) string {
	return LanguageCode(source) + "-" + LanguageCode(target)
}

// SplitPairID splits a "{source}-{target}" pack id. ok is false when
// the id is not a two-part pair.
func SplitPairID(id string) (source, target string, ok bool) {
	parts := strings.Split(id, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
