// Package repository provides the Postgres and static-dataset persistence used
// by the catalog, favorites and access services.
package repository

import "errors"

// ErrUnavailable is returned by Postgres repositories constructed without a
// database handle. Catalog reads treat it like any transport failure and fall
// back; user data operations surface it.
var ErrUnavailable = errors.New("repository: database is not configured")

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
