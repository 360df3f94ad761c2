// Package sqlite implements the Ocular store on SQLite: the item catalog, the
// user registry, and the per-user ownership ledger.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/ocular/internal/catalog"
	"github.com/mesh-intelligence/ocular/pkg/types"
)

// busyTimeout bounds how long a statement waits on the SQLite file lock.
const busyTimeout = 5 * time.Second

// Backend owns the SQLite database. It is safe for concurrent use; all
// statements share one connection so writes never race each other.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	items  *ItemsTable
	users  *UsersTable
	status *StatusTable
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	b := &Backend{}
	b.items = &ItemsTable{backend: b}
	b.users = &UsersTable{backend: b}
	b.status = &StatusTable{backend: b}
	return b
}

// Items returns the catalog accessor.
func (b *Backend) Items() *ItemsTable { return b.items }

// Users returns the user registry.
func (b *Backend) Users() *UsersTable { return b.users }

// Status returns the ownership ledger.
func (b *Backend) Status() *StatusTable { return b.status }

// Attach opens the database in config.DataDir. When the database file does not
// exist yet, Attach creates the directory, the schema, and seeds the catalog
// from config.CatalogFile or the embedded default. An existing file is opened
// as is. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(config.DataDir, types.DatabaseFileName)
	fresh := false
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		fresh = true
	} else if err != nil {
		return fmt.Errorf("checking database file: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("opening database: %w", err)
	}

	if fresh {
		if err := initialize(ctx, db, config.CatalogFile); err != nil {
			db.Close()
			os.Remove(dbPath)
			return err
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	db := b.db
	b.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Seed inserts catalog items in one transaction. It returns ErrSeedConflict
// when the items table already holds rows.
func (b *Backend) Seed(ctx context.Context, items []types.Item) error {
	db, release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()
	return seedItems(ctx, db, items)
}

// Count returns the number of rows in table.
func (b *Backend) Count(ctx context.Context, table types.Table) (int, error) {
	query, ok := countQueries[table.String()]
	if !ok {
		return 0, types.ErrTableNotFound
	}
	db, release, err := b.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	var n int
	if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// acquire returns the open database and holds the read lock until release is
// called, so Detach cannot close the database under a running statement.
// Table methods must not call acquire twice on the same path.
func (b *Backend) acquire() (*sql.DB, func(), error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, nil, types.ErrStoreDetached
	}
	return b.db, b.mu.RUnlock, nil
}

// initialize creates the schema and seeds the catalog on a fresh database.
func initialize(ctx context.Context, db *sql.DB, catalogFile string) error {
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	items, err := catalog.LoadFile(catalogFile)
	if err != nil {
		return err
	}
	return seedItems(ctx, db, items)
}

// dsn builds the modernc DSN. Foreign keys are per-connection in SQLite, so
// they are set through the DSN rather than a one-off PRAGMA.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		filepath.ToSlash(path), busyTimeout.Milliseconds())
}

// newUUID generates a new UUID v7 for entity ids.
func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn inside a transaction, committing when fn returns nil.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
