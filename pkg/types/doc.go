// Package types defines the entities, table enumeration, store configuration,
// and sentinel errors shared by the Ocular storage layer and its callers.
//
// The store owns three tables: the item catalog, the user registry, and the
// per-user ownership status rows that join them.
package types
