package utils

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// Cursor pagination over a created-at ordering. The cursor is an opaque
// base64url encoding of the last item's creation timestamp in
// microseconds; callers never inspect it.

// EncodeCursor encodes a creation timestamp into an opaque cursor.
func EncodeCursor(createdAt time.Time) string {
	raw := strconv.FormatInt(createdAt.UTC().UnixMicro(), 10)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes an opaque cursor back into a timestamp.
func DecodeCursor(cursor string) (time.Time, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cursor: %w", err)
	}
	micros, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cursor: %w", err)
	}
	return time.UnixMicro(micros).UTC(), nil
}
