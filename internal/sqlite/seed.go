package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

// backfillStatus adds a not-owned row for every missing (user, item) pair.
const backfillStatus = `INSERT OR IGNORE INTO status (user_id, item_id, has_item)
SELECT u.user_id, i.item_id, 0 FROM users u CROSS JOIN items i`

// seedItems inserts the catalog into an empty items table in one transaction.
// Seeding a non-empty table fails with ErrSeedConflict; generated ids would
// otherwise diverge from the rows already referenced by status.
func seedItems(ctx context.Context, db *sql.DB, items []types.Item) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return fmt.Errorf("counting items: %w", err)
	}
	if count > 0 {
		return types.ErrSeedConflict
	}

	return inTx(ctx, db, func(tx *sql.Tx) error {
		for _, item := range items {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("seeding item %q: %w", item.Name, err)
			}
			if item.Category == "" {
				item.Category = types.CategoryTrial
			}
			id, err := newUUID()
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO items (item_id, item_name, item_expansion, item_category) VALUES (?, ?, ?, ?)",
				id, item.Name, item.Expansion, item.Category,
			)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("seeding item %q: %w", item.Name, types.ErrDuplicateItem)
				}
				return fmt.Errorf("seeding item %q: %w", item.Name, err)
			}
		}
		// Users registered before the catalog was seeded get their rows now.
		if _, err := tx.ExecContext(ctx, backfillStatus); err != nil {
			return fmt.Errorf("initializing status rows: %w", err)
		}
		return nil
	})
}
