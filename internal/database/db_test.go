package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")

	db, err := Open(path, false)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite3", db.DriverName())
	_, err = db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	ro, err := Open(path, true)
	require.NoError(t, err)
	defer ro.Close()

	_, err = ro.Exec("INSERT INTO t (id) VALUES (1)")
	assert.Error(t, err, "read-only connection must reject writes")
}

func TestRunInTx(t *testing.T) {
	setup := func(t *testing.T) *sqlx.DB {
		db, err := Open(filepath.Join(t.TempDir(), "tx.sqlite"), false)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		_, err = db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)")
		require.NoError(t, err)
		return db
	}

	t.Run("commits on success", func(t *testing.T) {
		db := setup(t)
		err := RunInTx(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)")
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM t"))
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := setup(t)
		err := RunInTx(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)"); err != nil {
				return err
			}
			return fmt.Errorf("boom")
		})
		assert.Error(t, err)

		var count int
		require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM t"))
		assert.Equal(t, 0, count)
	})
}
