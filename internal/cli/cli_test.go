package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

// testDirs holds the directories one CLI test runs against.
type testDirs struct {
	config string
	data   string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	for _, key := range []string{"OCULAR_DISCORD_TOKEN", "TOKEN", "OCULAR_DATA_DIR", "OCULAR_CONFIG_DIR", "OCULAR_CATALOG_FILE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	root := t.TempDir()
	return testDirs{config: filepath.Join(root, "config"), data: filepath.Join(root, "data")}
}

// execute runs the CLI with args and returns its output.
func execute(t *testing.T, dirs testDirs, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config-dir", dirs.config,
		"--data-dir", dirs.data,
		"--env-file", filepath.Join(dirs.config, "missing.env"),
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, newTestDirs(t), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ocular v"))
	assert.Contains(t, out, "module: github.com/mesh-intelligence/ocular")
}

func TestInit(t *testing.T) {
	dirs := newTestDirs(t)

	out, err := execute(t, dirs, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "59 mounts, 0 users")
	assert.FileExists(t, filepath.Join(dirs.config, "config.yaml"))
	assert.FileExists(t, filepath.Join(dirs.data, types.DatabaseFileName))

	out, err = execute(t, dirs, "init")
	require.NoError(t, err, "init is idempotent")
	assert.Contains(t, out, "59 mounts")
}

func TestCatalog(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		check    func(t *testing.T, out string)
	}{
		{
			name: "table output",
			args: []string{"catalog", "--expansion", "heavensward", "--category", "raid"},
			check: func(t *testing.T, out string) {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				require.Len(t, lines, 4)
				assert.Contains(t, lines[0], "EXPANSION")
				assert.Contains(t, lines[1], "raid")
			},
		},
		{
			name: "json output",
			args: []string{"--json", "catalog", "--category", "trial"},
			check: func(t *testing.T, out string) {
				var items []types.Item
				require.NoError(t, json.Unmarshal([]byte(out), &items))
				assert.Len(t, items, 41)
				assert.Equal(t, types.ExpansionARealmReborn, items[0].Expansion)
			},
		},
		{
			name:     "unknown expansion",
			args:     []string{"catalog", "--expansion", "final fantasy"},
			wantCode: exitUserError,
		},
		{
			name:     "unknown category",
			args:     []string{"catalog", "--category", "dungeon"},
			wantCode: exitUserError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, newTestDirs(t), tt.args...)
			if tt.wantCode != exitSuccess {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, exitCode(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestUsers(t *testing.T) {
	out, err := execute(t, newTestDirs(t), "users")
	require.NoError(t, err)
	assert.Equal(t, "NAME  DISCORD ID", strings.TrimSpace(out))

	out, err = execute(t, newTestDirs(t), "--json", "users")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestExportRestore(t *testing.T) {
	dirs := newTestDirs(t)
	snapshot := filepath.Join(t.TempDir(), "snapshot")

	out, err := execute(t, dirs, "export", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported snapshot")
	for _, table := range types.Tables {
		assert.FileExists(t, filepath.Join(snapshot, table.String()+".jsonl"))
	}

	_, err = execute(t, dirs, "restore", snapshot)
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = execute(t, dirs, "restore", "--force", filepath.Join(t.TempDir(), "typo"))
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.ErrorIs(t, err, types.ErrNotFound)

	out, err = execute(t, dirs, "restore", "--force", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored snapshot")

	out, err = execute(t, dirs, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "59 mounts")
}

func TestRun_RequiresToken(t *testing.T) {
	_, err := execute(t, newTestDirs(t), "run")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.Contains(t, err.Error(), "Token")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: exitSuccess},
		{name: "user error", err: userError(errors.New("bad flag")), want: exitUserError},
		{name: "system error", err: sysError(errors.New("disk full")), want: exitSysError},
		{name: "wrapped system error", err: errors.Join(errors.New("ctx"), sysError(errors.New("disk full"))), want: exitSysError},
		{name: "plain error", err: errors.New("cobra arg error"), want: exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
