package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cliEnv isolates a CLI run from the user's config and LOG_* variables.
type cliEnv struct {
	logDir    string
	configDir string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{"LOG_DIR", "LOG_LEVEL", "LOG_RETENTION_DAYS", "LOG_COLOR", "NO_COLOR"} {
		t.Setenv(key, "")
	}
	return cliEnv{logDir: t.TempDir(), configDir: t.TempDir()}
}

// run executes the root command with the environment's directories.
func (e cliEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(append([]string{"--log-dir", e.logDir, "--config-dir", e.configDir}, args...))

	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"emit", "clean", "logs", "config", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"log-dir", "log-level", "config-dir"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_InvalidLogLevelFlag(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "--log-level", "loud", "emit", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}
