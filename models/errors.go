package models

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrItemNotFound is returned when no item has the requested id.
	ErrItemNotFound = errors.New("item not found")
	// ErrCategoryNameRequired is returned when an item is stored without a category.
	ErrCategoryNameRequired = errors.New("category name is required")
)

const pqUniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err was raised by a unique index,
// for either of the supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		// Primary result code only, when extended codes are off.
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}
