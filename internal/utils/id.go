package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewConnectionID returns the opaque identifier assigned to a connection
// for its lifetime.
func NewConnectionID() string {
	return uuid.NewString()
}

// NewToken returns a best-effort unique random token.
func NewToken() string {
	const size = 12

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}

	// Fallback to timestamp if crypto/rand is unavailable.
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
