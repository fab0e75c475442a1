package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// env holds isolated config and data directories for one test.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	return env{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// run executes the CLI with args and returns stdout, stderr and the error.
func (e env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return e.runContext(t, context.Background(), args...)
}

func (e env) runContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	if testing.Short() {
		t.Skip("opens a SQLite database")
	}
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := e.run(t, args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return out
}

func TestVersion(t *testing.T) {
	out := newEnv(t).mustRun(t, "version")
	assert.True(t, strings.HasPrefix(out, "phonebook v"), out)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "init")
	assert.Contains(t, out, "Phone book initialized successfully")

	data, err := os.ReadFile(filepath.Join(e.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "listen: localhost:8080")

	_, err = os.Stat(filepath.Join(e.dataDir, "phonebook.db"))
	assert.NoError(t, err)

	// Idempotent.
	e.mustRun(t, "init")
}

func TestAddListSearchDelete(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun(t, "list")
	assert.Equal(t, "Phone book is empty.\n", out)

	out = e.mustRun(t, "add", "Alice", "555-0001")
	assert.Equal(t, "Contact 'Alice' added successfully.\n", out)
	e.mustRun(t, "add", "Bob", "555-0002")

	out = e.mustRun(t, "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Alice")
	assert.Contains(t, lines[2], "Bob")

	out = e.mustRun(t, "search", "Bob")
	assert.Equal(t, "Contact found - Name: Bob, Number: 555-0002\n", out)

	out = e.mustRun(t, "delete", "Alice")
	assert.Equal(t, "Contact 'Alice' deleted successfully.\n", out)

	var contacts []types.Contact
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "list")), &contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, "Bob", contacts[0].Name)
	assert.Equal(t, "555-0002", contacts[0].Number)
}

func TestNotFoundIsUserError(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "add", "Alice", "555-0001")

	_, _, err := e.run(t, "search", "Zed")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.Contains(t, err.Error(), "contact 'Zed' not found")

	_, _, err = e.run(t, "delete", "Zed")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))

	// The failed delete changed nothing.
	out := e.mustRun(t, "search", "Alice")
	assert.Contains(t, out, "555-0001")
}

func TestEmptyInputIsUserError(t *testing.T) {
	e := newEnv(t)

	tests := [][]string{
		{"add", "", "555-0001"},
		{"add", "Alice", ""},
		{"search", ""},
		{"delete", ""},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := e.run(t, args...)
			require.Error(t, err)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestJSONOutput(t *testing.T) {
	e := newEnv(t)

	var added types.Contact
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "add", "Alice", "555-0001")), &added))
	assert.NotZero(t, added.ID)

	var found types.Contact
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "search", "Alice")), &found))
	assert.Equal(t, "555-0001", found.Number)

	var deleted map[string]int
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "delete", "Alice")), &deleted))
	assert.Equal(t, 1, deleted["deleted"])

	assert.JSONEq(t, `[]`, e.mustRun(t, "--json", "list"))
}

func TestPersistsAcrossInvocations(t *testing.T) {
	e := newEnv(t)
	for _, p := range [][2]string{{"C", "3"}, {"A", "1"}, {"B", "2"}} {
		e.mustRun(t, "add", p[0], p[1])
	}

	var contacts []types.Contact
	require.NoError(t, json.Unmarshal([]byte(e.mustRun(t, "--json", "list")), &contacts))
	var names []string
	for _, c := range contacts {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)
}

func TestExportImport(t *testing.T) {
	src := newEnv(t)
	src.mustRun(t, "add", "Alice", "555-0001")
	src.mustRun(t, "add", "Bob", "555-0002")

	file := filepath.Join(t.TempDir(), "contacts.jsonl")
	out := src.mustRun(t, "export", file)
	assert.Contains(t, out, "Exported 2 contacts")

	dst := newEnv(t)
	out = dst.mustRun(t, "import", file)
	assert.Contains(t, out, "Imported 2 contacts")
	assert.Contains(t, dst.mustRun(t, "search", "Bob"), "555-0002")

	_, _, err := dst.run(t, "import", filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestConfigDataDir(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	fromConfig := filepath.Join(t.TempDir(), "from-config")
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt),
		[]byte("backend: sqlite\ndata_dir: "+fromConfig+"\n"), 0o644))

	root := NewRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config-dir", e.configDir, "add", "Alice", "555-0001"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(filepath.Join(fromConfig, "phonebook.db"))
	assert.NoError(t, err, "data_dir from config.yaml is used when --data-dir is absent")
}

func TestUnknownBackendIsSysError(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte("backend: postgres\n"), 0o644))

	_, _, err := e.run(t, "list")
	require.Error(t, err)
	assert.Equal(t, exitSysError, exitCode(err))
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestServeStopsOnCancel(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _, err := e.runContext(t, ctx, "serve", "--listen", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, out, "Listening on http://127.0.0.1:")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(userError(errors.New("x"))))
	assert.Equal(t, exitSysError, exitCode(sysError(errors.New("x"))))
	assert.Equal(t, exitUserError, exitCode(errors.New("unknown command")))
}

func TestLogFileWrittenAndReleased(t *testing.T) {
	e := newEnv(t)
	logFile := filepath.Join(t.TempDir(), "phonebook.log")

	_, _, err := e.run(t, "--log-file", logFile, "--log-level", "debug", "search", "Zed")
	require.Error(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "contacts loaded")
}

func TestCloseLogAfterRunsOnError(t *testing.T) {
	closed := 0
	a := &app{closeLog: func() error { closed++; return nil }}
	errBoom := errors.New("boom")

	cmd := &cobra.Command{RunE: func(*cobra.Command, []string) error { return errBoom }}
	a.closeLogAfter(cmd)

	assert.ErrorIs(t, cmd.RunE(cmd, nil), errBoom)
	assert.Equal(t, 1, closed)
}
