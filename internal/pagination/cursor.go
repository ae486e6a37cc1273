package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

// DefaultLimit and MaxLimit bound page sizes.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Cursor is a decoded keyset position within an ordered listing.
type Cursor struct {
	Position int
	LastID   int64
}

// PageResult represents a paginated result set
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"hasMore"`
}

var (
	ErrInvalidCursor = errors.New("invalid cursor format")
)

// EncodeCursor creates an opaque cursor from the last item's position and ID.
func EncodeCursor(position int, lastID int64) string {
	if lastID <= 0 {
		return ""
	}
	raw := strconv.Itoa(position) + "|" + strconv.FormatInt(lastID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes a cursor. An empty cursor decodes to nil.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCursor
	}

	position, err := strconv.Atoi(parts[0])
	if err != nil || position < 0 {
		return nil, ErrInvalidCursor
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidCursor
	}

	return &Cursor{Position: position, LastID: id}, nil
}

// ClampLimit applies DefaultLimit to non-positive values and caps at MaxLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Trim cuts a limit+1 fetch down to limit items and returns the cursor for
// the next page, empty when there is none.
func Trim[T any](items []T, limit int, key func(T) (int, int64)) ([]T, string, bool) {
	if len(items) <= limit {
		return items, "", false
	}
	items = items[:limit]
	position, id := key(items[len(items)-1])
	return items, EncodeCursor(position, id), true
}
