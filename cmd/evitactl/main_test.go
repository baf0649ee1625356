package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/evita-client-go/evita/utils/testutils"
)

func run(t *testing.T, stub *testutils.DbSessionStub, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand(func(ctx context.Context, connString string) (Pool, error) {
		assert.Contains(t, connString, "postgres://")
		return stub, nil
	})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evita.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: shop\n"), 0o600))
	return path
}

func TestSetup(t *testing.T) {
	stub := testutils.NewDbSessionStub()
	_, stderr, err := run(t, stub, "setup", "--config", writeConfig(t))
	require.NoError(t, err)

	require.Len(t, stub.Statements, 2)
	assert.Contains(t, stub.Statements[0].Query, "CREATE TABLE IF NOT EXISTS shop_query_log")
	assert.Contains(t, stderr, `msg="query log is ready" table=shop_query_log`)
}

func TestSetupVerboseLogsStatements(t *testing.T) {
	stub := testutils.NewDbSessionStub()
	_, stderr, err := run(t, stub, "setup", "-v")
	require.NoError(t, err)

	assert.Contains(t, stderr, "level=debug msg=statement")
	assert.Equal(t, 0, stub.OnQueryEnded().(interface{ Len() int }).Len(), "statement logger must be detached")
}

func TestShapes(t *testing.T) {
	seen := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{"query(collection(?))", "Product", int64(7), seen, seen},
	))
	stdout, _, err := run(t, stub, "shapes", "--limit", "5")
	require.NoError(t, err)

	assert.Contains(t, stdout, "COUNT")
	assert.Contains(t, stdout, "query(collection(?))")
	assert.Contains(t, stdout, "2024-05-17T10:00:00Z")
	assert.Equal(t, []any{5}, stub.LastStatement().Params)
}

func TestShapesRejectsInvalidLimit(t *testing.T) {
	_, _, err := run(t, testutils.NewDbSessionStub(), "shapes", "--limit", "0")
	assert.ErrorContains(t, err, "invalid limit")
}

func TestEntries(t *testing.T) {
	stub := testutils.NewDbSessionStub(testutils.NewRowsStub(
		[]any{"01HXYZ0000000000000000000A", "6f1c1e9e-8a43-4d6c-9b0a-3b3c4f0f7a11", "Product", []byte(`["Product"]`), time.Now()},
	))
	stdout, _, err := run(t, stub, "entries", "query(collection(?))")
	require.NoError(t, err)

	assert.Contains(t, stdout, "01HXYZ0000000000000000000A")
	assert.Contains(t, stdout, `["Product"]`)
	assert.Equal(t, []any{"query(collection(?))", 20}, stub.LastStatement().Params)
}

func TestEntriesRejectsInvalidLimit(t *testing.T) {
	for _, limit := range []string{"0", "-3"} {
		t.Run(limit, func(t *testing.T) {
			stub := testutils.NewDbSessionStub()
			_, _, err := run(t, stub, "entries", "query()", "--limit="+limit)
			assert.ErrorContains(t, err, "invalid limit")
			assert.Empty(t, stub.Statements)
		})
	}
}

func TestConnectionFailure(t *testing.T) {
	var errOut bytes.Buffer
	cmd := newRootCommand(func(context.Context, string) (Pool, error) {
		return nil, errors.New("connection refused")
	})
	cmd.SetErr(&errOut)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"setup"})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "connection refused")
	assert.Contains(t, errOut.String(), `level=error msg="unable to connect"`)
}
