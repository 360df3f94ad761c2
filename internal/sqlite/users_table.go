package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

// UsersTable is the user registry.
type UsersTable struct {
	backend *Backend
}

// ResolveID returns the id of the user with this name, or ErrNotFound.
func (t *UsersTable) ResolveID(ctx context.Context, name string) (string, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return "", err
	}
	defer release()

	return resolveUserID(ctx, db, name)
}

// ResolveExternalID returns the chat account id of the user with this name,
// or ErrNotFound.
func (t *UsersTable) ResolveExternalID(ctx context.Context, name string) (int64, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	var ext int64
	err = db.QueryRowContext(ctx, "SELECT external_id FROM users WHERE user_name = ?", name).Scan(&ext)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, types.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolving external id of %q: %w", name, err)
	}
	return ext, nil
}

// ResolveByExternalID returns the user registered under a chat account id, or
// ErrNotFound.
func (t *UsersTable) ResolveByExternalID(ctx context.Context, externalID int64) (types.User, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return types.User{}, err
	}
	defer release()
	return userByExternalID(ctx, db, externalID)
}

// Register adds a user and creates a not-owned status row for every catalog
// item, in one transaction. A taken name or external id fails with
// ErrDuplicateUser.
func (t *UsersTable) Register(ctx context.Context, name string, externalID int64) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", types.ErrInvalidName
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
		var taken int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE user_name = ? OR external_id = ?",
			name, externalID,
		).Scan(&taken)
		if err != nil {
			return fmt.Errorf("checking user uniqueness: %w", err)
		}
		if taken > 0 {
			return types.ErrDuplicateUser
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO users (user_id, user_name, external_id) VALUES (?, ?, ?)",
			id, name, externalID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return types.ErrDuplicateUser
			}
			return fmt.Errorf("inserting user %q: %w", name, err)
		}
		return initializeForUser(ctx, tx, id)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Rename changes a user's display name. The external id and ledger are kept.
// Renaming to a name already taken, including the user's own, is
// ErrDuplicateUser.
func (t *UsersTable) Rename(ctx context.Context, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return types.ErrInvalidName
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()

	return inTx(ctx, db, func(tx *sql.Tx) error {
		id, err := resolveUserID(ctx, tx, oldName)
		if err != nil {
			return err
		}
		if _, err := resolveUserID(ctx, tx, newName); err == nil {
			return types.ErrDuplicateUser
		} else if !errors.Is(err, types.ErrNotFound) {
			return err
		}
		_, err = tx.ExecContext(ctx, "UPDATE users SET user_name = ? WHERE user_id = ?", newName, id)
		if err != nil {
			if isUniqueViolation(err) {
				return types.ErrDuplicateUser
			}
			return fmt.Errorf("renaming user %q: %w", oldName, err)
		}
		return nil
	})
}

// Delete removes a user and the user's status rows.
func (t *UsersTable) Delete(ctx context.Context, name string) error {
	db, release, err := t.backend.acquire()
	if err != nil {
		return err
	}
	defer release()

	return inTx(ctx, db, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, "SELECT user_id FROM users WHERE user_name = ?", name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("resolving user %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM status WHERE user_id = ?", id); err != nil {
			return fmt.Errorf("deleting status for user %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", id); err != nil {
			return fmt.Errorf("deleting user %q: %w", name, err)
		}
		return nil
	})
}

// ListNames returns every registered user name, ordered by name.
func (t *UsersTable) ListNames(ctx context.Context) ([]string, error) {
	users, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names, nil
}

// List returns every registered user, ordered by name.
func (t *UsersTable) List(ctx context.Context) ([]types.User, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, "SELECT user_id, user_name, external_id FROM users ORDER BY user_name")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.UserID, &u.Name, &u.ExternalID); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func userByExternalID(ctx context.Context, q querier, externalID int64) (types.User, error) {
	var u types.User
	err := q.QueryRowContext(ctx,
		"SELECT user_id, user_name, external_id FROM users WHERE external_id = ?",
		externalID,
	).Scan(&u.UserID, &u.Name, &u.ExternalID)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, types.ErrNotFound
	}
	if err != nil {
		return types.User{}, fmt.Errorf("resolving user %d: %w", externalID, err)
	}
	return u, nil
}

func resolveUserID(ctx context.Context, q querier, name string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, "SELECT user_id FROM users WHERE user_name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving user %q: %w", name, err)
	}
	return id, nil
}
