package ashenv_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashlog/ash/internal/ashenv"
)

func TestNewStripsPrefix(t *testing.T) {
	cfg := ashenv.New([]string{
		"ASH_CFG_HISTORY_DB=/var/ash/history.db",
		"ASH_SESSION_ID=42",
		"HOME=/home/frank",
	}, nil)

	v, ok := cfg.GetString("HISTORY_DB")
	require.True(t, ok)
	require.Equal(t, "/var/ash/history.db", v)

	// Unprefixed environment variables are not configuration.
	require.False(t, cfg.Sets("SESSION_ID"))
	require.False(t, cfg.Sets("HOME"))
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	cfg := ashenv.New(
		[]string{"ASH_CFG_DEFAULT_FORMAT=csv"},
		map[string]string{
			"default_format": "auto",
			"log_level":      "debug",
		})

	v, _ := cfg.GetString("DEFAULT_FORMAT")
	require.Equal(t, "csv", v)

	// File-only keys survive, upper-cased.
	v, ok := cfg.GetString("LOG_LEVEL")
	require.True(t, ok)
	require.Equal(t, "debug", v)
}

func TestGetStringCaseInsensitiveKey(t *testing.T) {
	cfg := ashenv.New([]string{"ASH_CFG_LOG_FILE=/tmp/ash.log"}, nil)

	for _, key := range []string{"LOG_FILE", "log_file", " log_file "} {
		v, ok := cfg.GetString(key)
		require.True(t, ok, key)
		require.Equal(t, "/tmp/ash.log", v)
	}
}

func TestGetBool(t *testing.T) {
	cfg := ashenv.New([]string{
		"ASH_CFG_A=true",
		"ASH_CFG_B= true ",
		"ASH_CFG_C=TRUE",
		"ASH_CFG_D=1",
		"ASH_CFG_E=",
	}, nil)

	require.True(t, cfg.GetBool("A"))
	require.True(t, cfg.GetBool("B"))

	// Only the literal lower-case word counts.
	require.False(t, cfg.GetBool("C"))
	require.False(t, cfg.GetBool("D"))
	require.False(t, cfg.GetBool("E"))
	require.False(t, cfg.GetBool("MISSING"))
}

func TestGetInt(t *testing.T) {
	cfg := ashenv.New([]string{
		"ASH_CFG_LIMIT=25",
		"ASH_CFG_PADDED= 7 ",
		"ASH_CFG_BAD=many",
	}, nil)

	require.Equal(t, 25, cfg.GetInt("LIMIT", -1))
	require.Equal(t, 7, cfg.GetInt("PADDED", -1))
	require.Equal(t, -1, cfg.GetInt("BAD", -1))
	require.Equal(t, -1, cfg.GetInt("MISSING", -1))
}

func TestSetsDistinguishesEmptyFromUnset(t *testing.T) {
	cfg := ashenv.New([]string{"ASH_CFG_LOG_FILE="}, nil)

	require.True(t, cfg.Sets("LOG_FILE"))
	v, ok := cfg.GetString("LOG_FILE")
	require.True(t, ok)
	require.Empty(t, v)

	require.False(t, cfg.Sets("LOG_LEVEL"))
}
