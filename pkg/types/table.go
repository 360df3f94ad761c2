package types

import "errors"

// Table identifies one of the tables owned by the store. The set is closed;
// callers cannot name a table that does not exist.
type Table int

// Tables in dependency order: status rows reference items and users.
const (
	TableItems Table = iota + 1
	TableUsers
	TableStatus
)

// String returns the SQLite table name.
func (t Table) String() string {
	switch t {
	case TableItems:
		return "items"
	case TableUsers:
		return "users"
	case TableStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Tables lists every table for enumeration.
var Tables = []Table{TableItems, TableUsers, TableStatus}

// Lookup and registration errors. Not-found and already-exists conditions are
// recoverable; callers turn them into user-facing replies.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateItem = errors.New("item already exists")
	ErrDuplicateUser = errors.New("user already exists")
	ErrUnknownUser   = errors.New("user is not registered")
)

// Input validation errors.
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrUnknownExpansion = errors.New("unknown expansion")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrTableNotFound    = errors.New("table not found")
)

// Store lifecycle errors. ErrSeedConflict aborts startup: seeding a catalog
// table that already holds rows would duplicate generated ids.
var (
	ErrSeedConflict    = errors.New("catalog table is not empty")
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
