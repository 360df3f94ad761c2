package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

// Restore replaces the contents of the store with a snapshot written by
// Export. Items load before users and status rows after both, so foreign
// keys hold at every insert. The whole restore is one transaction: on any
// failure the store keeps its previous contents. Malformed lines and
// unknown fields are skipped. items.jsonl must exist; users.jsonl and
// status.jsonl may be absent. Pairs missing from status.jsonl get a
// not-owned row.
func (b *Backend) Restore(ctx context.Context, dir string) error {
	snapshot := make(map[types.Table][]json.RawMessage, len(types.Tables))
	for _, table := range types.Tables {
		path := filepath.Join(dir, ExportFileName(table))
		records, err := readJSONL(path)
		if errors.Is(err, fs.ErrNotExist) {
			if table == types.TableItems {
				return fmt.Errorf("snapshot file %s: %w", path, types.ErrNotFound)
			}
			continue
		}
		if err != nil {
			return err
		}
		snapshot[table] = records
	}

	db, release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	return inTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range []string{"DELETE FROM status", "DELETE FROM users", "DELETE FROM items"} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("clearing store: %w", err)
			}
		}
		for _, table := range types.Tables {
			for _, rec := range snapshot[table] {
				if err := restoreRecord(ctx, tx, table, rec); err != nil {
					return err
				}
			}
		}
		if _, err := tx.ExecContext(ctx, backfillStatus); err != nil {
			return fmt.Errorf("initializing status rows: %w", err)
		}
		return nil
	})
}

func restoreRecord(ctx context.Context, tx *sql.Tx, table types.Table, rec json.RawMessage) error {
	var err error
	switch table {
	case types.TableItems:
		var it types.Item
		if json.Unmarshal(rec, &it) != nil {
			return nil
		}
		if err := it.Validate(); err != nil {
			return fmt.Errorf("restoring item %q: %w", it.Name, err)
		}
		if it.Category == "" {
			it.Category = types.CategoryTrial
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (item_id, item_name, item_expansion, item_category) VALUES (?, ?, ?, ?)",
			it.ItemID, it.Name, it.Expansion, it.Category,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("restoring item %q: %w", it.Name, types.ErrDuplicateItem)
		}
	case types.TableUsers:
		var u types.User
		if json.Unmarshal(rec, &u) != nil {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO users (user_id, user_name, external_id) VALUES (?, ?, ?)",
			u.UserID, u.Name, u.ExternalID,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("restoring user %q: %w", u.Name, types.ErrDuplicateUser)
		}
	case types.TableStatus:
		var s types.Status
		if json.Unmarshal(rec, &s) != nil {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO status (user_id, item_id, has_item) VALUES (?, ?, ?)",
			s.UserID, s.ItemID, boolToInt(s.HasItem),
		)
	}
	if err != nil {
		return fmt.Errorf("restoring %s: %w", table, err)
	}
	return nil
}
