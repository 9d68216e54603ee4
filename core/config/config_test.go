package config_test

import (
	"testing"

	"github.com/ss13community/banwatch/core/config"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingDBConfigIsFatal(t *testing.T) {
	dir := t.TempDir()

	_, err := config.LoadConfig(dir, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dbConfig")
}

func TestLoadConfig_DefaultsApply(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DBCONFIG_CONNECTIONSTRING", "user:pass@tcp(127.0.0.1:3306)/bans")

	cfg, err := config.LoadConfig(dir, nil)

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "user:pass@tcp(127.0.0.1:3306)/bans", cfg.DBConfig.ConnectionString)
}

func TestLoadConfig_EnvOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DBCONFIG_CONNECTIONSTRING", "user:pass@tcp(127.0.0.1:3306)/bans")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig(dir, nil)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DBCONFIG_CONNECTIONSTRING", "user:pass@tcp(127.0.0.1:3306)/bans")
	t.Setenv("SERVER_PORT", "9000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.port", "", "")
	require.NoError(t, flags.Set("server.port", "9100"))

	cfg, err := config.LoadConfig(dir, flags)

	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
}

func TestFlagKeys_IncludesLeafKeysOnly(t *testing.T) {
	keys := config.FlagKeys()

	assert.Contains(t, keys, "dbConfig.connectionString")
	assert.Contains(t, keys, "server.port")
	assert.Contains(t, keys, "log.level")
	for _, k := range keys {
		assert.NotEqual(t, "sources", k)
	}
}

