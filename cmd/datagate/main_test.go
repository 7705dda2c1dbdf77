package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) (cfgPath, usersPath string) {
	t.Helper()
	dir := t.TempDir()
	usersPath = filepath.Join(dir, "users.json")
	cfgPath = filepath.Join(dir, "datagate.yaml")
	yaml := "users_file: " + usersPath + "\n" +
		"warehouse:\n  driver: none\n" +
		"auth:\n  jwt_secret: 0123456789abcdef0123456789abcdef\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))
	return cfgPath, usersPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUsersCommands(t *testing.T) {
	cfg, usersPath := writeConfig(t)

	out, err := run(t, "--config", cfg, "users", "add", "bob", "--password", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "User 'bob' added successfully!")

	_, err = run(t, "--config", cfg, "users", "add", "bob", "--password", "pw")
	require.Error(t, err)

	out, err = run(t, "--config", cfg, "users", "grant", "bob",
		"--table", "rawc_data.t1", "--filter", "rawc_data.t1=age > 30")
	require.NoError(t, err)
	require.Contains(t, out, "1 tables, 1 row filters")

	_, err = run(t, "--config", cfg, "users", "grant", "bob", "--filter", "rawc_data.t9=x = 1")
	require.Error(t, err)

	out, err = run(t, "--config", cfg, "users", "list")
	require.NoError(t, err)
	require.Contains(t, out, "bob")
	require.Contains(t, out, "admin")

	_, err = run(t, "--config", cfg, "users", "delete", "admin")
	require.Error(t, err)

	_, err = run(t, "--config", cfg, "users", "delete", "bob")
	require.NoError(t, err)

	raw, err := os.ReadFile(usersPath)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "bob")
}

func TestStatusInDemoMode(t *testing.T) {
	cfg, _ := writeConfig(t)
	out, err := run(t, "--config", cfg, "status")
	require.Error(t, err)
	require.Contains(t, out, "demo mode")
}

func TestIngestNeedsWarehouse(t *testing.T) {
	cfg, _ := writeConfig(t)
	_, err := run(t, "--config", cfg, "ingest", "--csv", "data.csv")
	require.ErrorContains(t, err, "needs a warehouse driver")
}
