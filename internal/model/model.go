package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when an operation targets a name absent from the list.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidPayload is returned for malformed or missing item fields.
	ErrInvalidPayload = errors.New("invalid payload")
)

// MaxAmount keeps amounts inside a 32-bit integer column.
const MaxAmount = math.MaxInt32

// Item is a single shopping list entry, identified by its name.
type Item struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// UpsertMode controls how a create request treats an item that already exists.
type UpsertMode string

const (
	// UpsertReplace overwrites the amount of an existing item.
	UpsertReplace UpsertMode = "replace"
	// UpsertAccumulate adds the posted amount to the existing amount.
	UpsertAccumulate UpsertMode = "accumulate"
)

// ParseUpsertMode converts a configuration value into an UpsertMode.
// An empty string yields UpsertReplace.
func ParseUpsertMode(s string) (UpsertMode, error) {
	switch UpsertMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", UpsertReplace:
		return UpsertReplace, nil
	case UpsertAccumulate:
		return UpsertAccumulate, nil
	default:
		return "", fmt.Errorf("unknown upsert mode %q", s)
	}
}

// Merge returns the amount an existing item ends up with after an upsert.
// Accumulating past MaxAmount is an ErrInvalidPayload.
func (m UpsertMode) Merge(existing, incoming int) (int, error) {
	if m != UpsertAccumulate {
		return incoming, nil
	}
	if incoming > MaxAmount-existing {
		return 0, fmt.Errorf("%w: amount would exceed %d", ErrInvalidPayload, MaxAmount)
	}
	return existing + incoming, nil
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Pagination is a 1-indexed page of a given size over the ordered list.
type Pagination struct {
	Page int
	Size int
}

// Offset returns the zero-based index of the first item on the page. It
// saturates at math.MaxInt so a huge page lands past the end of the list.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Size
}

// ParsePagination reads page and size query values. Missing, malformed or
// non-positive values fall back to the defaults rather than failing. When
// maxSize is positive, size is clamped to it.
func ParsePagination(pageParam, sizeParam string, defaultSize, maxSize int) Pagination {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	p := Pagination{
		Page: parsePositive(pageParam, DefaultPage),
		Size: parsePositive(sizeParam, defaultSize),
	}
	if maxSize > 0 && p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

func parsePositive(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Window copies up to limit items starting at offset, clipped to the list
// length. An offset past the end yields an empty, non-nil slice.
func Window(items []Item, offset, limit int) []Item {
	if offset < 0 || limit <= 0 || offset >= len(items) {
		return []Item{}
	}
	end := offset + limit
	if end > len(items) || end < offset {
		end = len(items)
	}
	out := make([]Item, end-offset)
	copy(out, items[offset:end])
	return out
}
