package entry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		wantOK   bool
		wantWord string
		verify   func(t *testing.T, e Entry)
	}{
		{
			name: "lowercases headword and keeps display form",
			entry: Entry{
				Headword:     "Casa",
				Translations: []string{"house"},
			},
			wantOK:   true,
			wantWord: "casa",
			verify: func(t *testing.T, e Entry) {
				assert.Equal(t, "Casa", e.DisplayHeadword)
				assert.Equal(t, "unknown", e.PartOfSpeech)
			},
		},
		{
			name: "deduplicates translations preserving order",
			entry: Entry{
				Headword:     "perro",
				Translations: []string{"dog", "hound", "dog", ""},
			},
			wantOK:   true,
			wantWord: "perro",
			verify: func(t *testing.T, e Entry) {
				assert.Equal(t, []string{"dog", "hound"}, e.Translations)
			},
		},
		{
			name: "caps examples and synonyms",
			entry: Entry{
				Headword:    "hablar",
				Definitions: []string{"to speak"},
				Examples:    []string{"e1", "e2", "e3", "e4", "e5"},
				Synonyms:    []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"},
			},
			wantOK:   true,
			wantWord: "hablar",
			verify: func(t *testing.T, e Entry) {
				assert.Len(t, e.Examples, MaxExamples)
				assert.Len(t, e.Synonyms, MaxSynonyms)
			},
		},
		{
			name:   "rejects empty headword",
			entry:  Entry{Headword: "  ", Translations: []string{"x"}},
			wantOK: false,
		},
		{
			name: "rejects overlong headword",
			entry: Entry{
				Headword:     strings.Repeat("a", MaxHeadwordLength),
				Translations: []string{"x"},
			},
			wantOK: false,
		},
		{
			name:   "rejects entry with no translations and no definitions",
			entry:  Entry{Headword: "ghost"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entry
			ok := e.Normalize()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantWord, e.Headword)
			}
			if tt.verify != nil {
				tt.verify(t, e)
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		word       string
		sourceLang string
		targetLang string
		want       int
	}{
		{name: "source function word", word: "el", sourceLang: "es", targetLang: "en", want: FrequencyFunctionWord},
		{name: "target function word", word: "The", sourceLang: "es", targetLang: "en", want: FrequencyFunctionWord},
		{name: "very short", word: "sol", sourceLang: "es", targetLang: "en", want: FrequencyVeryShort},
		{name: "short", word: "perro", sourceLang: "es", targetLang: "en", want: FrequencyShort},
		{name: "medium", word: "ventana", sourceLang: "es", targetLang: "en", want: FrequencyMedium},
		{name: "long", word: "biblioteca", sourceLang: "es", targetLang: "en", want: FrequencyLong},
		{name: "multibyte runes counted not bytes", word: "мир", sourceLang: "ru", targetLang: "en", want: FrequencyVeryShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.word, tt.sourceLang, tt.targetLang))
		})
	}
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"English", "en"},
		{"spa", "es"},
		{"fr", "fr"},
		{"Portuguese", "pt"},
		{"klingon", "kl"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageCode(tt.input))
		})
	}
}

func TestSplitPairID(t *testing.T) {
	source, target, ok := SplitPairID("es-en")
	assert.True(t, ok)
	assert.Equal(t, "es", source)
	assert.Equal(t, "en", target)

	_, _, ok = SplitPairID("es")
	assert.False(t, ok)
	_, _, ok = SplitPairID("-en")
	assert.False(t, ok)
}

func TestValidLanguageCode(t *testing.T) {
	assert.True(t, ValidLanguageCode("en"))
	assert.True(t, ValidLanguageCode("spa"))
	assert.False(t, ValidLanguageCode(""))
	assert.False(t, ValidLanguageCode("not a code"))
}
