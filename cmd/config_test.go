package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, ".rulemig", configBaseName)
	assert.Equal(t, ".rulemig.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "jobs", jobsFlagName)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "index.jobs", jobsConfigKey)
	assert.Equal(t, "naming.collision", collisionConfigKey)
	assert.Equal(t, "output.write", writeConfigKey)
	assert.Equal(t, "output.report", reportConfigKey)
	assert.Equal(t, "RULEMIG", envPrefix)
	assert.Equal(t, []string{"**/build/**", "**/target/**", "**/.git/**"}, defaultExclude)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	logger := configureLogger(filepath.Join(t.TempDir(), "rulemig.log"), true)
	require.NotNil(t, logger)

	assert.Same(t, logger, globalLogger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
}

func TestReadConfig(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		t.Chdir(t.TempDir())

		assert.NoError(t, readConfig())
	})

	t.Run("malformed file is reported", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("naming: [unclosed\n"), 0o600))
		t.Chdir(dir)

		assert.Error(t, readConfig())
	})
}
