package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 3, 15, 9, 30, 45, 123456000, time.UTC)

	cursor := EncodeCursor(createdAt)
	decoded, err := DecodeCursor(cursor)
	require.NoError(t, err)

	assert.True(t, createdAt.Equal(decoded), "expected %v, got %v", createdAt, decoded)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := DecodeCursor("not-base64!!!")
	assert.Error(t, err)

	// valid base64 but not a number
	_, err = DecodeCursor("aGVsbG8=")
	assert.Error(t, err)
}
