package http

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrewwbaranoff-ship-it/akbserver/internal/auth"
	"github.com/andrewwbaranoff-ship-it/akbserver/internal/store"
	"github.com/andrewwbaranoff-ship-it/akbserver/internal/store/sqlite"
)

// testLogger returns a logger that discards everything.
func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}
