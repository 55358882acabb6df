//go:build sqlite_vec && cgo

package store

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Registers the sqlite-vec extension with the mattn/go-sqlite3 driver
	// so a vec0 virtual table can be created as an ANN fast path over
	// embedding_entries. The brute-force cosine scan in pkg/recall stays
	// the only path when this build tag is absent.
	vec.Auto()
}
