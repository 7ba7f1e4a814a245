package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPageSize is returned when a page size is not one of the table's choices.
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrMissingStorageKey is returned for a customizable table without a key.
	ErrMissingStorageKey = errors.New("customizable table requires a storage key")
)

// Options are the per-instance flags a host sets when mounting a table.
type Options struct {
	Pagination      bool
	PageSizes       []int
	DefaultPageSize int
	GlobalSearch    bool
	// Customizable enables loading and saving the column config under StorageKey.
	Customizable bool
	StorageKey   string
	// Where, when set, drops rows before search and filtering.
	Where func(Row) bool
}

// DefaultOptions mirrors the stock table: paged by 10, searchable, customizable.
func DefaultOptions() Options {
	return Options{
		Pagination:      true,
		PageSizes:       []int{10, 25, 50, 100},
		DefaultPageSize: 10,
		GlobalSearch:    true,
		Customizable:    true,
	}
}

// Validate checks the flag combination.
func (o Options) Validate() error {
	if o.Customizable && o.StorageKey == "" {
		return ErrMissingStorageKey
	}
	if !o.Pagination {
		return nil
	}
	for _, s := range o.PageSizes {
		if s <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidPageSize, s)
		}
	}
	if o.DefaultPageSize <= 0 {
		return fmt.Errorf("%w: default %d", ErrInvalidPageSize, o.DefaultPageSize)
	}
	if len(o.PageSizes) > 0 && !o.AllowsPageSize(o.DefaultPageSize) {
		return fmt.Errorf("%w: default %d not in %v", ErrInvalidPageSize, o.DefaultPageSize, o.PageSizes)
	}
	return nil
}

// AllowsPageSize reports whether n is a selectable page size. An empty
// PageSizes list accepts any positive size.
func (o Options) AllowsPageSize(n int) bool {
	if n <= 0 {
		return false
	}
	if len(o.PageSizes) == 0 {
		return true
	}
	for _, s := range o.PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// NextPageSize cycles through PageSizes from current by step (+1 or -1).
func (o Options) NextPageSize(current, step int) int {
	if len(o.PageSizes) == 0 {
		return current
	}
	idx := 0
	for i, s := range o.PageSizes {
		if s == current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(o.PageSizes)) % len(o.PageSizes)
	return o.PageSizes[idx]
}
