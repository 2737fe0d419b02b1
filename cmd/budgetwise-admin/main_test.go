package main

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"budgetwise/internal/auth"
	"budgetwise/internal/config"
	"budgetwise/internal/core"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		SQLiteDBPath: filepath.Join(t.TempDir(), "admin.db"),
		JWTSecret:    "test-secret-0123456789",
		JWTIssuer:    "budgetwise",
	}
}

func runAdmin(cfg *config.Config, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	code := run(cfg, logger, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunAddUser(t *testing.T) {
	cfg := testConfig(t)

	code, out, _ := runAdmin(cfg, "add-user", "alice@example.com")
	require.Equal(t, exitOK, code)
	require.Equal(t, "created user 1 <alice@example.com>\n", out)

	code, out, _ = runAdmin(cfg, "add-user", "alice@example.com")
	require.Equal(t, exitError, code)
	require.Empty(t, out)

	code, out, _ = runAdmin(cfg, "add-user", "bob@example.com")
	require.Equal(t, exitOK, code)
	require.Contains(t, out, "<bob@example.com>")

	code, out, _ = runAdmin(cfg, "schema-version")
	require.Equal(t, exitOK, code)
	require.Equal(t, "schema version 1 (dirty=false)\n", out)
}

func TestRunToken(t *testing.T) {
	cfg := testConfig(t)

	code, out, _ := runAdmin(cfg, "token", "-ttl", "1h", "alice@example.com")
	require.Equal(t, exitOK, code)

	id, err := auth.NewTokenResolver(cfg.JWTSecret, cfg.JWTIssuer).Resolve(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, core.Identity("alice@example.com"), id)
}

func TestRunUsage(t *testing.T) {
	cfg := testConfig(t)
	tests := [][]string{
		nil,
		{"frobnicate"},
		{"add-user"},
		{"add-user", "a@example.com", "b@example.com"},
		{"token", "-ttl", "soon", "alice@example.com"},
	}
	for _, args := range tests {
		code, out, errOut := runAdmin(cfg, args...)
		require.Equal(t, exitUsage, code, "args %v", args)
		require.Empty(t, out)
		require.Contains(t, errOut, "usage: budgetwise-admin")
	}
}
