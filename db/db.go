package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/jhuhnke/solana-walrus/db/migrations"
)

var ErrNotFound = errors.New("not found")

type Scannable interface {
	Scan(dest ...interface{}) error
}

func SqlDB(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+dbPath+"?_busy_timeout=5000")
}

func joinFields(fields []string) string {
	return strings.Join(fields, ", ")
}

// CreateAllTables brings the schema of sqldb up to date.
func CreateAllTables(ctx context.Context, sqldb *sql.DB) error {
	if err := sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	if err := migrations.Migrate(sqldb); err != nil {
		return fmt.Errorf("migrating db: %w", err)
	}
	return nil
}

func CreateTestTmpDB(t *testing.T) *sql.DB {
	f, err := os.CreateTemp(t.TempDir(), "*.db")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	d, err := SqlDB(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}
