package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := ParseArgs([]string{"-c", ""})
	require.NoError(t, err)

	assert.Equal(t, ":443", opts.Port)
	assert.Equal(t, "postgres://localhost:5432/securetalk?sslmode=disable", opts.DatabaseDSN)
	assert.Equal(t, "localhost+2.pem", opts.CertFile)
	assert.Equal(t, "localhost+2-key.pem", opts.KeyFile)
	assert.Equal(t, "public", opts.StaticDir)
	assert.Equal(t, "info", opts.LogLevel)
}

func TestParseArgs_Flags(t *testing.T) {
	opts, err := ParseArgs([]string{"-c", "", "-a", "localhost:8443", "-d", "postgres://db/x", "-cert", "c.pem", "-key", "k.pem", "-l", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "localhost:8443", opts.Port)
	assert.Equal(t, "postgres://db/x", opts.DatabaseDSN)
	assert.Equal(t, "c.pem", opts.CertFile)
	assert.Equal(t, "k.pem", opts.KeyFile)
	assert.Equal(t, "debug", opts.LogLevel)
}

func TestParseArgs_ConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.json")
	body := `{"address":"0.0.0.0:9443","database_dsn":"postgres://file/db","static_dir":""}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	t.Setenv("TLS_CERT", "env.pem")

	opts, err := ParseArgs([]string{"-c", path, "-a", "ignored:1"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9443", opts.Port, "config file overrides flags")
	assert.Equal(t, "postgres://file/db", opts.DatabaseDSN)
	assert.Equal(t, "", opts.StaticDir)
	assert.Equal(t, "env.pem", opts.CertFile, "env overrides everything")

	t.Setenv("SERVER_ADDRESS", "127.0.0.1:1443")
	opts, err = ParseArgs([]string{"-c", path})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1443", opts.Port)
}

func TestParseArgs_BadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := ParseArgs([]string{"-config", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error while parsing config file")
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	_, err := ParseArgs([]string{"-nope"})
	require.Error(t, err)
}
