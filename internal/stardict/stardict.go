// Package stardict parses the legacy three-file binary dictionary
// format used by FreeDict and Wiktionary exports: an .ifo metadata
// file of key=value pairs, an .idx file of {word\0, offset, length}
// records, and a .dict blob of raw definition data.
package stardict

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FormatError indicates a malformed or missing dictionary source file.
// It aborts parsing of that single source, not a whole multi-source
// batch.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bad dictionary file %s: %s", e.Path, e.Reason)
}

// IsFormatError reports whether err is a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// Dictionary binds the .ifo/.idx/.dict triple found in one directory.
type Dictionary struct {
	Metadata *Metadata
	dir      string
	base     string
}

// Open locates a dictionary set in dir. The .ifo file determines the
// base name for the sibling .idx and .dict files.
func Open(dir string) (*Dictionary, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.ifo"))
	if err != nil {
		return nil, fmt.Errorf("glob ifo files: %w", err)
	}
	if len(matches) == 0 {
		return nil, &FormatError{Path: dir, Reason: "no .ifo metadata file"}
	}

	ifoPath := matches[0]
	metadata, err := ParseMetadata(ifoPath)
	if err != nil {
		return nil, err
	}

	return &Dictionary{
		Metadata: metadata,
		dir:      dir,
		base:     strings.TrimSuffix(filepath.Base(ifoPath), ".ifo"),
	}, nil
}

// Index parses the .idx file into ordered index entries.
func (d *Dictionary) Index() ([]IndexEntry, error) {
	f, err := os.Open(filepath.Join(d.dir, d.base+".idx"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FormatError{Path: d.dir, Reason: "no .idx index file"}
		}
		return nil, fmt.Errorf("open idx file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseIndex(f)
}

// Data reads the whole .dict blob into memory.
func (d *Dictionary) Data() (*Blob, error) {
	raw, err := os.ReadFile(filepath.Join(d.dir, d.base+".dict"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FormatError{Path: d.dir, Reason: "no .dict data file"}
		}
		return nil, fmt.Errorf("read dict file: %w", err)
	}
	return &Blob{data: raw}, nil
}
