package stardict

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
)

// MaxIndexWords caps how many index records are read into memory from
// one dictionary. Upstream Wiktionary exports can carry millions of
// entries; a device pack never needs more than this.
const MaxIndexWords = 50000

// IndexEntry is one .idx record: a word plus the offset/length of its
// definition in the .dict blob.
type IndexEntry struct {
	Word   string
	Offset uint32
	Length uint32
}

// ParseIndex scans .idx records in file order. Records with an empty
// word or a word at or above the headword length bound are skipped.
// A partial trailing record is silently dropped. Reading stops at
// MaxIndexWords.
func ParseIndex(r io.Reader) ([]IndexEntry, error) {
	s := bufio.NewScanner(bufio.NewReader(r))
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	s.Split(splitIndexRecord)

	var entries []IndexEntry
	for s.Scan() {
		b := s.Bytes()
		i := bytes.IndexByte(b, 0)
		if i < 0 || len(b) < i+9 {
			// Trailing bytes that do not form a complete record.
			continue
		}
		word := string(b[:i])
		if word == "" || len(word) >= entry.MaxHeadwordLength {
			continue
		}
		entries = append(entries, IndexEntry{
			Word:   word,
			Offset: binary.BigEndian.Uint32(b[i+1:]),
			Length: binary.BigEndian.Uint32(b[i+5:]),
		})
		if len(entries) >= MaxIndexWords {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// splitIndexRecord tokenizes one {word\0, uint32, uint32} record.
func splitIndexRecord(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		recordSize := i + 1 + 8
		if len(data) >= recordSize {
			return recordSize, data[:recordSize], nil
		}
	}
	if atEOF {
		// Incomplete trailing record; emit as-is and let the caller
		// drop it.
		return len(data), data, nil
	}
	return 0, nil, nil
}
