package stardict

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeIndexRecord appends one {word\0, offset, length} record.
func writeIndexRecord(buf *bytes.Buffer, word string, offset, length uint32) {
	buf.WriteString(word)
	buf.WriteByte(0)
	_ = binary.Write(buf, binary.BigEndian, offset)
	_ = binary.Write(buf, binary.BigEndian, length)
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  bool
		wantBook string
		wantWC   int64
	}{
		{
			name:     "valid metadata",
			contents: "StarDict's dict ifo file\nversion=3.0.0\nbookname=Spanish-English\nwordcount=1234\n",
			wantBook: "Spanish-English",
			wantWC:   1234,
		},
		{
			name:     "bad magic",
			contents: "not an ifo file\nbookname=x\n",
			wantErr:  true,
		},
		{
			name:     "missing bookname",
			contents: "StarDict's dict ifo file\nversion=3.0.0\nwordcount=5\n",
			wantErr:  true,
		},
		{
			name:     "bad wordcount",
			contents: "StarDict's dict ifo file\nbookname=x\nwordcount=abc\n",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dict.ifo")
			require.NoError(t, os.WriteFile(path, []byte(tt.contents), 0644))

			m, err := ParseMetadata(path)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsFormatError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBook, m.Bookname)
			assert.Equal(t, tt.wantWC, m.WordCount)
		})
	}
}

func TestParseMetadata_FileMissing(t *testing.T) {
	_, err := ParseMetadata(filepath.Join(t.TempDir(), "nope.ifo"))
	assert.True(t, IsFormatError(err))
}

func TestParseIndex(t *testing.T) {
	t.Run("reads records in order", func(t *testing.T) {
		var buf bytes.Buffer
		writeIndexRecord(&buf, "casa", 100, 20)
		writeIndexRecord(&buf, "perro", 120, 35)

		entries, err := ParseIndex(&buf)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, IndexEntry{Word: "casa", Offset: 100, Length: 20}, entries[0])
		assert.Equal(t, IndexEntry{Word: "perro", Offset: 120, Length: 35}, entries[1])
	})

	t.Run("skips empty and overlong words", func(t *testing.T) {
		var buf bytes.Buffer
		writeIndexRecord(&buf, "", 0, 1)
		writeIndexRecord(&buf, strings.Repeat("x", 150), 0, 1)
		writeIndexRecord(&buf, "ok", 0, 1)

		entries, err := ParseIndex(&buf)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "ok", entries[0].Word)
	})

	t.Run("drops partial trailing record", func(t *testing.T) {
		var buf bytes.Buffer
		writeIndexRecord(&buf, "casa", 100, 20)
		buf.WriteString("trunc")
		buf.WriteByte(0)
		buf.Write([]byte{0, 0}) // only 2 of 8 offset/length bytes

		entries, err := ParseIndex(&buf)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "casa", entries[0].Word)
	})
}

func TestBlob_Extract(t *testing.T) {
	blob := &Blob{data: []byte("xxa house or home (vivienda, hogar)yy")}

	t.Run("extracts definition with synonyms", func(t *testing.T) {
		def := blob.Extract(IndexEntry{Word: "casa", Offset: 2, Length: 33})
		require.NotNil(t, def)
		assert.Equal(t, "a house or home", def.Text)
		assert.Equal(t, []string{"vivienda", "hogar"}, def.Synonyms)
	})

	t.Run("out of bounds returns nil", func(t *testing.T) {
		assert.Nil(t, blob.Extract(IndexEntry{Offset: 30, Length: 100}))
	})

	t.Run("invalid utf8 yields empty definition", func(t *testing.T) {
		bad := &Blob{data: []byte{0xff, 0xfe, 0xfd}}
		def := bad.Extract(IndexEntry{Offset: 0, Length: 3})
		require.NotNil(t, def)
		assert.Empty(t, def.Text)
	})
}

func TestCleanDefinition(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantText     string
		wantSynonyms []string
	}{
		{
			name:         "scenario casa",
			raw:          "a house or home (vivienda, hogar)",
			wantText:     "a house or home",
			wantSynonyms: []string{"vivienda", "hogar"},
		},
		{
			name:         "strips html markup",
			raw:          "<b>to run</b> quickly<br/>on foot",
			wantText:     "to run quickly on foot",
			wantSynonyms: nil,
		},
		{
			name:         "see also references",
			raw:          "a domestic feline. See also: gato, minino.",
			wantText:     "a domestic feline.",
			wantSynonyms: []string{"gato", "minino"},
		},
		{
			name:         "collapses whitespace",
			raw:          "one\n\n  two\tthree",
			wantText:     "one two three",
			wantSynonyms: nil,
		},
		{
			name:         "rejects phrase-length parentheticals",
			raw:          "a tool (used for cutting wood and other hard materials)",
			wantText:     "a tool",
			wantSynonyms: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, synonyms := CleanDefinition(tt.raw)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantSynonyms, synonyms)
		})
	}
}

func TestOpen(t *testing.T) {
	t.Run("binds triple and parses index", func(t *testing.T) {
		dir := t.TempDir()
		ifo := "StarDict's dict ifo file\nversion=3.0.0\nbookname=Test\nwordcount=1\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.ifo"), []byte(ifo), 0644))

		var idx bytes.Buffer
		writeIndexRecord(&idx, "casa", 0, 15)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.idx"), idx.Bytes(), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.dict"), []byte("a house or home"), 0644))

		d, err := Open(dir)
		require.NoError(t, err)
		assert.Equal(t, "Test", d.Metadata.Bookname)

		entries, err := d.Index()
		require.NoError(t, err)
		require.Len(t, entries, 1)

		blob, err := d.Data()
		require.NoError(t, err)
		def := blob.Extract(entries[0])
		require.NotNil(t, def)
		assert.Equal(t, "a house or home", def.Text)
	})

	t.Run("missing ifo is a format error", func(t *testing.T) {
		_, err := Open(t.TempDir())
		assert.True(t, IsFormatError(err))
	})

	t.Run("missing idx is a format error", func(t *testing.T) {
		dir := t.TempDir()
		ifo := "StarDict's dict ifo file\nbookname=Test\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.ifo"), []byte(ifo), 0644))

		d, err := Open(dir)
		require.NoError(t, err)
		_, err = d.Index()
		assert.True(t, IsFormatError(err))
	})
}
