package stardict

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

const ifoMagic = "StarDict's dict ifo file"

// Metadata holds the key=value pairs of an .ifo file.
type Metadata struct {
	Bookname  string
	WordCount int64
	Values    map[string]string
}

// ParseMetadata reads an .ifo metadata file. The first line must be
// the magic header; subsequent non-empty lines are key=value pairs.
func ParseMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FormatError{Path: path, Reason: "metadata file missing"}
		}
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	values := map[string]string{}
	s := bufio.NewScanner(bufio.NewReader(f))
	if s.Scan() {
		if s.Text() != ifoMagic {
			return nil, &FormatError{Path: path, Reason: "bad magic header"}
		}
	}
	for s.Scan() {
		line := s.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			return nil, &FormatError{Path: path, Reason: "malformed key=value line"}
		}
		values[strings.TrimRight(kv[0], " ")] = strings.TrimLeft(kv[1], " ")
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	m := &Metadata{
		Bookname: values["bookname"],
		Values:   values,
	}
	if m.Bookname == "" {
		return nil, &FormatError{Path: path, Reason: "missing bookname"}
	}
	if wc := values["wordcount"]; wc != "" {
		m.WordCount, err = strconv.ParseInt(wc, 10, 64)
		if err != nil {
			return nil, &FormatError{Path: path, Reason: "bad wordcount"}
		}
	}
	return m, nil
}
