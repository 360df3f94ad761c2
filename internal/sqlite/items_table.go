package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

// ItemsTable reads and edits the item catalog.
type ItemsTable struct {
	backend *Backend
}

// ListNames returns item names ordered by name. An empty expansion lists the
// whole catalog.
func (t *ItemsTable) ListNames(ctx context.Context, expansion string) ([]string, error) {
	items, err := t.List(ctx, types.ItemFilter{Expansion: expansion})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	sort.Strings(names)
	return names, nil
}

// List returns the items matching filter, ordered by expansion release order
// and then by name.
func (t *ItemsTable) List(ctx context.Context, filter types.ItemFilter) ([]types.Item, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	query := "SELECT item_id, item_name, item_expansion, item_category FROM items"
	var conds []string
	var args []any
	if filter.Expansion != "" {
		conds = append(conds, "item_expansion = ?")
		args = append(args, filter.Expansion)
	}
	if filter.Category != "" {
		conds = append(conds, "item_category = ?")
		args = append(args, filter.Category)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY item_name"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []types.Item{}
	for rows.Next() {
		var it types.Item
		if err := rows.Scan(&it.ItemID, &it.Name, &it.Expansion, &it.Category); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return types.ExpansionOrder(items[i].Expansion) < types.ExpansionOrder(items[j].Expansion)
	})
	return items, nil
}

// ListExpansions returns the distinct expansions present in the catalog in
// release order.
func (t *ItemsTable) ListExpansions(ctx context.Context) ([]string, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, "SELECT DISTINCT item_expansion FROM items")
	if err != nil {
		return nil, fmt.Errorf("listing expansions: %w", err)
	}
	defer rows.Close()

	expansions := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scanning expansion: %w", err)
		}
		expansions = append(expansions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing expansions: %w", err)
	}

	sort.Slice(expansions, func(i, j int) bool {
		return types.ExpansionOrder(expansions[i]) < types.ExpansionOrder(expansions[j])
	})
	return expansions, nil
}

// ResolveID returns the id of the item with exactly this name, or ErrNotFound.
func (t *ItemsTable) ResolveID(ctx context.Context, name string) (string, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return "", err
	}
	defer release()
	return resolveItemID(ctx, db, name)
}

// Get returns the item with this name, or ErrNotFound.
func (t *ItemsTable) Get(ctx context.Context, name string) (types.Item, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return types.Item{}, err
	}
	defer release()

	var it types.Item
	err = db.QueryRowContext(ctx,
		"SELECT item_id, item_name, item_expansion, item_category FROM items WHERE item_name = ?",
		name,
	).Scan(&it.ItemID, &it.Name, &it.Expansion, &it.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Item{}, types.ErrNotFound
	}
	if err != nil {
		return types.Item{}, fmt.Errorf("getting item %q: %w", name, err)
	}
	return it, nil
}

// Create adds item to the catalog and gives every registered user a
// not-owned status row for it, in one transaction. It returns the new id.
func (t *ItemsTable) Create(ctx context.Context, item types.Item) (string, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	if item.Category == "" {
		item.Category = types.CategoryTrial
	}

	db, release, err := t.backend.acquire()
	if err != nil {
		return "", err
	}
	defer release()

	id, err := newUUID()
	if err != nil {
		return "", err
	}

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := resolveItemID(ctx, tx, item.Name); err == nil {
			return types.ErrDuplicateItem
		} else if !errors.Is(err, types.ErrNotFound) {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (item_id, item_name, item_expansion, item_category) VALUES (?, ?, ?, ?)",
			id, item.Name, item.Expansion, item.Category,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return types.ErrDuplicateItem
			}
			return fmt.Errorf("inserting item %q: %w", item.Name, err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO status (user_id, item_id, has_item) SELECT user_id, ?, 0 FROM users",
			id,
		)
		if err != nil {
			return fmt.Errorf("initializing status for item %q: %w", item.Name, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Rename changes an item's name in place; its id and status rows are kept.
func (t *ItemsTable) Rename(ctx context.Context, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return types.ErrInvalidName
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()

	return inTx(ctx, db, func(tx *sql.Tx) error {
		id, err := resolveItemID(ctx, tx, oldName)
		if err != nil {
			return err
		}
		if _, err := resolveItemID(ctx, tx, newName); err == nil {
			return types.ErrDuplicateItem
		} else if !errors.Is(err, types.ErrNotFound) {
			return err
		}
		_, err = tx.ExecContext(ctx, "UPDATE items SET item_name = ? WHERE item_id = ?", newName, id)
		if err != nil {
			if isUniqueViolation(err) {
				return types.ErrDuplicateItem
			}
			return fmt.Errorf("renaming item %q: %w", oldName, err)
		}
		return nil
	})
}

// Delete removes an item and its status rows.
func (t *ItemsTable) Delete(ctx context.Context, name string) error {
	db, release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()

	return inTx(ctx, db, func(tx *sql.Tx) error {
		id, err := resolveItemID(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM status WHERE item_id = ?", id); err != nil {
			return fmt.Errorf("deleting status for item %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE item_id = ?", id); err != nil {
			return fmt.Errorf("deleting item %q: %w", name, err)
		}
		return nil
	})
}

func resolveItemID(ctx context.Context, q querier, name string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, "SELECT item_id FROM items WHERE item_name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving item %q: %w", name, err)
	}
	return id, nil
}
