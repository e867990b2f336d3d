package queryeventmonitoring

import (
	"os"
	"path/filepath"
	"testing"

	arguments "github.com/newrelic/nri-mysql-events/src/args"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mysql-events.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 2500000
max_rows_per_poll: 200
verbose: true
excluded_databases:
  - sakila
  - world
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, config.PollInterval)
	assert.Equal(t, 2500000, *config.PollInterval)
	require.NotNil(t, config.MaxRowsPerPoll)
	assert.Equal(t, 200, *config.MaxRowsPerPoll)
	require.NotNil(t, config.Verbose)
	assert.True(t, *config.Verbose)
	assert.Equal(t, []string{"sakila", "world"}, config.ExcludedDatabases)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "poll_interval: [1"))
		assert.Error(t, err)
	})
}

func TestPollConfig_Apply(t *testing.T) {
	t.Run("Overrides set fields only", func(t *testing.T) {
		config, err := LoadConfig(writeConfig(t, "poll_interval: 3000000\nexcluded_databases: [sakila]\n"))
		require.NoError(t, err)

		args := arguments.ArgumentList{PollInterval: 1000000, MaxRowsPerPoll: 1000, ExcludedDatabases: "[]"}
		require.NoError(t, config.Apply(&args))

		assert.Equal(t, 3000000, args.PollInterval)
		assert.Equal(t, 1000, args.MaxRowsPerPoll)
		assert.Equal(t, `["sakila"]`, args.ExcludedDatabases)
		assert.False(t, args.Verbose)
	})

	t.Run("Empty file keeps arguments", func(t *testing.T) {
		config, err := LoadConfig(writeConfig(t, ""))
		require.NoError(t, err)

		args := arguments.ArgumentList{PollInterval: 1000000, MaxRowsPerPoll: 1000, ExcludedDatabases: `["world"]`}
		require.NoError(t, config.Apply(&args))
		assert.Equal(t, arguments.ArgumentList{PollInterval: 1000000, MaxRowsPerPoll: 1000, ExcludedDatabases: `["world"]`}, args)
	})
}
