package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

// StatusTable is the per-user ownership ledger.
type StatusTable struct {
	backend *Backend
}

// InitializeForUser inserts a not-owned row for every catalog item the user
// has no row for yet. Calling it again is a no-op.
func (t *StatusTable) InitializeForUser(ctx context.Context, userID string) error {
	db, release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()
	return initializeForUser(ctx, db, userID)
}

// SetOwnership sets the owned flag of each named item for the user registered
// under externalID. Names that do not resolve are skipped and returned; the
// resolvable ones are all updated in one transaction. An unregistered
// externalID fails with ErrUnknownUser.
func (t *StatusTable) SetOwnership(ctx context.Context, externalID int64, names []string, owned bool) ([]string, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	unresolved := []string{}
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		user, err := userByExternalID(ctx, tx, externalID)
		if errors.Is(err, types.ErrNotFound) {
			return types.ErrUnknownUser
		}
		if err != nil {
			return err
		}

		for _, name := range names {
			itemID, err := resolveItemID(ctx, tx, name)
			if errors.Is(err, types.ErrNotFound) {
				unresolved = append(unresolved, name)
				continue
			}
			if err != nil {
				return err
			}
			// Upsert so a row missing from an interrupted fan-out heals here.
			_, err = tx.ExecContext(ctx,
				`INSERT INTO status (user_id, item_id, has_item) VALUES (?, ?, ?)
ON CONFLICT (user_id, item_id) DO UPDATE SET has_item = excluded.has_item`,
				user.UserID, itemID, boolToInt(owned),
			)
			if err != nil {
				return fmt.Errorf("setting ownership of %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unresolved, nil
}

// ListOwned returns the names of the expansion's items whose owned flag for
// the user equals owned, ordered by name. No match yields an empty slice.
// An unregistered externalID fails with ErrUnknownUser.
func (t *StatusTable) ListOwned(ctx context.Context, externalID int64, expansion string, owned bool) ([]string, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	user, err := userByExternalID(ctx, db, externalID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT i.item_name
FROM status s JOIN items i ON i.item_id = s.item_id
WHERE s.user_id = ? AND s.has_item = ? AND i.item_expansion = ?
ORDER BY i.item_name`,
		user.UserID, boolToInt(owned), expansion,
	)
	if err != nil {
		return nil, fmt.Errorf("listing owned items: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning item name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing owned items: %w", err)
	}
	return names, nil
}

// SummarizeMostNeeded counts, per item, the users who do not own it. Rows are
// ordered by count descending, then item name. Items nobody needs are left out.
func (t *StatusTable) SummarizeMostNeeded(ctx context.Context) ([]types.NeededItem, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, `SELECT i.item_expansion, i.item_name, COUNT(*) AS needed
FROM status s JOIN items i ON i.item_id = s.item_id
WHERE s.has_item = 0
GROUP BY i.item_id
ORDER BY needed DESC, i.item_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("summarizing needed items: %w", err)
	}
	defer rows.Close()

	needed := []types.NeededItem{}
	for rows.Next() {
		var n types.NeededItem
		if err := rows.Scan(&n.Expansion, &n.Name, &n.NeededCount); err != nil {
			return nil, fmt.Errorf("scanning needed item: %w", err)
		}
		needed = append(needed, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summarizing needed items: %w", err)
	}
	return needed, nil
}

func initializeForUser(ctx context.Context, e execer, userID string) error {
	_, err := e.ExecContext(ctx, `INSERT OR IGNORE INTO status (user_id, item_id, has_item)
SELECT ?, item_id, 0 FROM items`, userID)
	if err != nil {
		return fmt.Errorf("initializing status for user %s: %w", userID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
