// Package query caches server reads and tracks server writes.
package query

import (
	"fmt"
	"strconv"
)

// FamilyNotes groups every "list notes" key for invalidation.
const FamilyNotes = "notes"

// Key identifies one cacheable list request.
type Key struct {
	Page     int
	PageSize int
	Search   string
}

// NotesKey builds a key, normalizing page to at least 1.
func NotesKey(page, pageSize int, search string) Key {
	if page < 1 {
		page = 1
	}
	return Key{Page: page, PageSize: pageSize, Search: search}
}

// Family is the invalidation group of the key.
func (k Key) Family() string { return FamilyNotes }

// String is a stable, unambiguous form used for flight dedup and logs.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d/%s", k.Family(), k.Page, k.PageSize, strconv.Quote(k.Search))
}
