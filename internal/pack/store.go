// Package pack builds and reads single-file dictionary stores and the
// distribution registry that describes them.
package pack

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kvgharbigit/polybook-sub003/internal/database"
	"github.com/kvgharbigit/polybook-sub003/internal/entry"
)

// progressInterval is how many inserted records between progress
// callbacks.
const progressInterval = 1000

// InsertionError reports the entry that failed during a batch insert.
// The whole batch is rolled back when it occurs.
type InsertionError struct {
	Lemma string
	Err   error
}

func (e *InsertionError) Error() string {
	return fmt.Sprintf("insert entry %q: %v", e.Lemma, e.Err)
}

func (e *InsertionError) Unwrap() error {
	return e.Err
}

// Row is one record of the on-device store. The lemma, definition,
// synonyms and examples columns are the compatibility contract with
// already-published packs; the remaining columns serve ranking and
// bilingual routing.
type Row struct {
	Lemma        string  `db:"lemma"`
	Definition   string  `db:"definition"`
	Synonyms     *string `db:"synonyms"`
	Examples     *string `db:"examples"`
	Translations *string `db:"translations"`
	PartOfSpeech string  `db:"pos"`
	Frequency    int     `db:"frequency"`
}

// Store wraps a writable dictionary database.
type Store struct {
	db *sqlx.DB
}

// OpenStore opens (creating if needed) a writable store at path.
func OpenStore(path string) (*Store, error) {
	db, err := database.Open(path, false)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection. Used by tests.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates the entries table and lemma index. It is
// idempotent; calling it on an existing store is a no-op.
func (s *Store) CreateSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			lemma TEXT PRIMARY KEY,
			definition TEXT NOT NULL,
			synonyms TEXT,
			examples TEXT,
			translations TEXT,
			pos TEXT NOT NULL DEFAULT 'unknown',
			frequency INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_lemma ON entries (lemma)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// InsertEntries writes all entries in one transaction. Either every
// entry commits or none do; the first failing entry aborts the batch
// with an InsertionError naming its lemma. progress, when non-nil, is
// called every progressInterval records and once at the end.
func (s *Store) InsertEntries(ctx context.Context, entries []entry.Entry, progress func(done, total int)) error {
	total := len(entries)
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx,
			`INSERT OR REPLACE INTO entries (lemma, definition, synonyms, examples, translations, pos, frequency)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer func() {
			_ = stmt.Close()
		}()

		for i, e := range entries {
			row, err := rowFromEntry(e)
			if err != nil {
				return &InsertionError{Lemma: e.Headword, Err: err}
			}
			if _, err := stmt.ExecContext(ctx,
				row.Lemma, row.Definition, row.Synonyms, row.Examples,
				row.Translations, row.PartOfSpeech, row.Frequency); err != nil {
				return &InsertionError{Lemma: e.Headword, Err: err}
			}
			if progress != nil && (i+1)%progressInterval == 0 {
				progress(i+1, total)
			}
		}
		if progress != nil {
			progress(total, total)
		}
		return nil
	})
}

// EntryCount returns the number of stored entries.
func (s *Store) EntryCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM entries"); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

func rowFromEntry(e entry.Entry) (Row, error) {
	if e.Headword == "" {
		return Row{}, fmt.Errorf("empty lemma")
	}
	definition := ""
	if len(e.Definitions) > 0 {
		definition = e.Definitions[0]
	} else if len(e.Translations) > 0 {
		// Bilingual packs without monolingual definitions store the
		// translation list as the definition text.
		definition = e.Translations[0]
	}

	row := Row{
		Lemma:        e.Headword,
		Definition:   definition,
		PartOfSpeech: e.PartOfSpeech,
		Frequency:    e.Frequency,
	}
	var err error
	if row.Synonyms, err = marshalList(e.Synonyms); err != nil {
		return Row{}, err
	}
	if row.Examples, err = marshalList(e.Examples); err != nil {
		return Row{}, err
	}
	if row.Translations, err = marshalList(e.Translations); err != nil {
		return Row{}, err
	}
	return row, nil
}

// marshalList serializes a string list as a JSON array, or nil for an
// empty list so the column stays NULL.
func marshalList(values []string) (*string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal list: %w", err)
	}
	s := string(raw)
	return &s, nil
}

// UnmarshalList is the inverse of the column serialization used by
// InsertEntries. A NULL column yields nil.
func UnmarshalList(column *string) ([]string, error) {
	if column == nil || *column == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(*column), &values); err != nil {
		return nil, fmt.Errorf("unmarshal list: %w", err)
	}
	return values, nil
}
