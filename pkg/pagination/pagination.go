// Package pagination pages the results of the list methods with opaque
// cursors.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
)

const (
	// DefaultLimit is the page size used by the list methods
	DefaultLimit = 50

	// MaxLimit is the maximum allowed page size
	MaxLimit = 200

	cursorPrefix = "offset:"
)

var (
	// ErrInvalidLimit is returned when the pagination limit is invalid
	ErrInvalidLimit = errors.New("pagination limit must be greater than 0 and less than or equal to MaxLimit")

	// ErrInvalidCursor is returned when a pagination cursor is invalid
	ErrInvalidCursor = errors.New("invalid pagination cursor format")
)

// EncodeCursor returns the cursor that resumes a listing at offset.
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// DecodeCursor returns the offset a cursor resumes at. The empty cursor
// starts at zero.
func DecodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	s, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, ErrInvalidCursor
	}
	offset, err := strconv.Atoi(s)
	if err != nil || offset < 0 {
		return 0, ErrInvalidCursor
	}
	return offset, nil
}

// ValidateLimit checks a page size.
func ValidateLimit(limit int) error {
	if limit <= 0 || limit > MaxLimit {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	return nil
}

// Page returns the slice of items selected by cursor and limit, plus the
// cursor of the next page, empty when no items remain. A limit of zero uses
// DefaultLimit. A malformed cursor, or one past the end of items, is an
// invalid params error.
func Page[T any](items []T, cursor string, limit int) ([]T, string, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if err := ValidateLimit(limit); err != nil {
		return nil, "", mcperrors.InvalidParams(err.Error())
	}

	offset, err := DecodeCursor(cursor)
	if err != nil || offset > len(items) {
		return nil, "", mcperrors.InvalidCursor(cursor)
	}

	end := offset + limit
	if end >= len(items) {
		return items[offset:], "", nil
	}
	return items[offset:end], EncodeCursor(end), nil
}
