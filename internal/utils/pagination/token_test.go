package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	submittedAt := time.Date(2026, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(submittedAt, "exp-123")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedTime, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, submittedAt, decodedTime, "Submission time should match after decode")
	assert.Equal(t, "exp-123", decodedID, "ID should match after decode")
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	_, _, err := DecodeToken("not-base64!!!")
	assert.Error(t, err, "Invalid base64 should fail to decode")

	// Valid base64 but missing the separator.
	_, _, err = DecodeToken("aGVsbG8=")
	assert.Error(t, err, "Token without separator should fail to decode")
}

func TestDecodeTokenIDWithSeparator(t *testing.T) {
	// IDs containing the separator survive the round trip since only the
	// first separator splits.
	submittedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	token := EncodeToken(submittedAt, "a|b")

	_, decodedID, err := DecodeToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "a|b", decodedID)
}
