package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitAll(t *testing.T, env cliEnv, records ...[]string) {
	t.Helper()
	for _, args := range records {
		_, _, err := env.run(t, append([]string{"emit"}, args...)...)
		require.NoError(t, err)
	}
}

func TestLogsCmd_TailsCombinedLog(t *testing.T) {
	// Given: three emitted records
	env := newCLIEnv(t)
	emitAll(t, env,
		[]string{"-c", "a", "first"},
		[]string{"-c", "a", "second"},
		[]string{"-c", "a", "third"},
	)

	// When: showing the last two
	stdout, stderr, err := env.run(t, "logs", "-n", "2", "--no-color")

	// Then: only those are printed, the header goes to stderr
	require.NoError(t, err)
	assert.NotContains(t, stdout, "first")
	assert.Contains(t, stdout, "second")
	assert.Contains(t, stdout, "third")
	assert.NotContains(t, stdout, "\x1b[")
	assert.Contains(t, stderr, "Log file:")
}

func TestLogsCmd_Filters(t *testing.T) {
	env := newCLIEnv(t)
	emitAll(t, env,
		[]string{"-l", "debug", "-c", "db", "--log-level", "debug", "dbg"},
		[]string{"-l", "warn", "-c", "db", "slow query"},
		[]string{"-l", "error", "-c", "http", "bad gateway"},
	)

	stdout, _, err := env.run(t, "logs", "--level", "warn", "--category", "db")

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(stdout, "\n"))
	assert.Contains(t, stdout, "slow query")
}

func TestLogsCmd_ErrorSource(t *testing.T) {
	env := newCLIEnv(t)
	emitAll(t, env,
		[]string{"healthy-record"},
		[]string{"-l", "error", "broken"},
	)

	stdout, _, err := env.run(t, "logs", "--source", "error")

	require.NoError(t, err)
	assert.NotContains(t, stdout, "healthy-record")
	assert.Contains(t, stdout, "broken")
}

func TestLogsCmd_AllSourcesShowSource(t *testing.T) {
	env := newCLIEnv(t)
	emitAll(t, env, []string{"-l", "error", "broken"})

	stdout, _, err := env.run(t, "logs", "--source", "all")

	require.NoError(t, err)
	assert.Contains(t, stdout, "[combined]")
	assert.Contains(t, stdout, "[error]")
}

func TestLogsCmd_NoLogFiles(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "logs")

	assert.Error(t, err)
}

func TestLogsCmd_InvalidLevel(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "logs", "--level", "chatty")

	assert.Error(t, err)
}
