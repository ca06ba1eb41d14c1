package pack

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.CreateSchema(context.Background()))
	return store
}

func TestStore_CreateSchema_Idempotent(t *testing.T) {
	store := newTestStore(t)
	// Second call must not error or duplicate indices.
	require.NoError(t, store.CreateSchema(context.Background()))

	var indices int
	require.NoError(t, store.db.Get(&indices,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_entries_lemma'"))
	assert.Equal(t, 1, indices)
}

func TestStore_InsertEntries_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []entry.Entry{
		{
			Headword:     "casa",
			Definitions:  []string{"a house or home"},
			Synonyms:     []string{"vivienda", "hogar"},
			Translations: []string{"house", "home"},
			Examples:     []string{"mi casa es tu casa"},
			PartOfSpeech: "noun",
			Frequency:    3000,
		},
		{
			Headword:     "sol",
			Translations: []string{"sun"},
			PartOfSpeech: "noun",
			Frequency:    5000,
		},
	}
	require.NoError(t, store.InsertEntries(ctx, entries, nil))

	count, err := store.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var row Row
	require.NoError(t, store.db.Get(&row, "SELECT * FROM entries WHERE lemma = ?", "casa"))
	assert.Equal(t, "a house or home", row.Definition)

	synonyms, err := UnmarshalList(row.Synonyms)
	require.NoError(t, err)
	assert.Equal(t, []string{"vivienda", "hogar"}, synonyms)

	translations, err := UnmarshalList(row.Translations)
	require.NoError(t, err)
	assert.Equal(t, []string{"house", "home"}, translations)

	// Entries without definitions store the first translation.
	require.NoError(t, store.db.Get(&row, "SELECT * FROM entries WHERE lemma = ?", "sol"))
	assert.Equal(t, "sun", row.Definition)
	assert.Nil(t, row.Synonyms)
}

func TestStore_InsertEntries_Progress(t *testing.T) {
	store := newTestStore(t)

	entries := make([]entry.Entry, 2500)
	for i := range entries {
		entries[i] = entry.Entry{
			Headword:     fmt.Sprintf("word%04d", i),
			Translations: []string{"x"},
		}
	}

	var calls [][2]int
	err := store.InsertEntries(context.Background(), entries, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1000, 2500}, {2000, 2500}, {2500, 2500}}, calls)
}

func TestStore_InsertEntries_RollsBackWholeBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prepared := mock.ExpectPrepare("INSERT OR REPLACE INTO entries")
	prepared.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prepared.ExpectExec().WillReturnError(fmt.Errorf("disk I/O error"))
	mock.ExpectRollback()

	store := NewStore(sqlx.NewDb(db, "sqlite3"))
	entries := []entry.Entry{
		{Headword: "uno", Translations: []string{"one"}},
		{Headword: "dos", Translations: []string{"two"}},
	}
	err = store.InsertEntries(context.Background(), entries, nil)
	require.Error(t, err)

	var insErr *InsertionError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, "dos", insErr.Lemma)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertEntries_EmptyLemma(t *testing.T) {
	store := newTestStore(t)
	err := store.InsertEntries(context.Background(), []entry.Entry{{}}, nil)

	var insErr *InsertionError
	require.ErrorAs(t, err, &insErr)

	count, countErr := store.EntryCount(context.Background())
	require.NoError(t, countErr)
	assert.Equal(t, 0, count)
}
