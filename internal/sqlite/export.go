package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

// exportQueries selects every row of a table in a stable order.
var exportQueries = map[types.Table]string{
	types.TableItems:  "SELECT item_id, item_name, item_expansion, item_category FROM items ORDER BY item_id",
	types.TableUsers:  "SELECT user_id, user_name, external_id FROM users ORDER BY user_id",
	types.TableStatus: "SELECT user_id, item_id, has_item FROM status ORDER BY user_id, item_id",
}

// ExportFileName returns the JSONL file name a table is exported to.
func ExportFileName(table types.Table) string {
	return table.String() + ".jsonl"
}

// Export writes a JSONL snapshot of every table into dir. Each file is
// replaced atomically; a failed export leaves earlier snapshots intact.
func (b *Backend) Export(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	db, release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	for _, table := range types.Tables {
		records, err := exportTable(ctx, db, table)
		if err != nil {
			return err
		}
		if err := writeJSONL(filepath.Join(dir, ExportFileName(table)), records); err != nil {
			return fmt.Errorf("writing %s: %w", ExportFileName(table), err)
		}
	}
	return nil
}

func exportTable(ctx context.Context, db *sql.DB, table types.Table) ([]json.RawMessage, error) {
	rows, err := db.QueryContext(ctx, exportQueries[table])
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", table, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec any
		switch table {
		case types.TableItems:
			var it types.Item
			err = rows.Scan(&it.ItemID, &it.Name, &it.Expansion, &it.Category)
			rec = it
		case types.TableUsers:
			var u types.User
			err = rows.Scan(&u.UserID, &u.Name, &u.ExternalID)
			rec = u
		case types.TableStatus:
			var s types.Status
			err = rows.Scan(&s.UserID, &s.ItemID, &s.HasItem)
			rec = s
		}
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s row: %w", table, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exporting %s: %w", table, err)
	}
	return records, nil
}
