package sqlite

// Schema DDL for the three store tables.
const (
	createItems = `CREATE TABLE items (
    item_id TEXT PRIMARY KEY,
    item_name TEXT NOT NULL UNIQUE,
    item_expansion TEXT NOT NULL,
    item_category TEXT NOT NULL DEFAULT 'trial'
);`

	createUsers = `CREATE TABLE users (
    user_id TEXT PRIMARY KEY,
    user_name TEXT NOT NULL UNIQUE,
    external_id INTEGER NOT NULL UNIQUE
);`

	createStatus = `CREATE TABLE status (
    user_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    has_item INTEGER NOT NULL DEFAULT 0 CHECK (has_item IN (0, 1)),
    PRIMARY KEY (user_id, item_id),
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
    FOREIGN KEY (item_id) REFERENCES items(item_id) ON DELETE CASCADE
);`
)

// Index DDL for the listing and summary queries.
const (
	idxItemsExpansion = `CREATE INDEX idx_items_expansion ON items(item_expansion, item_name);`
	idxStatusItem     = `CREATE INDEX idx_status_item ON status(item_id, has_item);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createItems,
	createUsers,
	createStatus,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxItemsExpansion,
	idxStatusItem,
}

// countQueries maps each table to its row-count statement. Table names never
// come from callers as strings.
var countQueries = map[string]string{
	"items":  "SELECT COUNT(*) FROM items",
	"users":  "SELECT COUNT(*) FROM users",
	"status": "SELECT COUNT(*) FROM status",
}
