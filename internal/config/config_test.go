package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sealchat.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", cfg.Listen)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.SecretProvisioned())
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
listen = "0.0.0.0:9090"
log_level = "debug"

[encryption]
secret_file = "/run/secrets/chat"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9090", cfg.Listen)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "/run/secrets/chat", cfg.Encryption.SecretFile)
	require.True(t, cfg.SecretProvisioned())
	require.NoError(t, cfg.Validate())
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, `listne = ":8080"`)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestValidate_MutuallyExclusiveSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Encryption.Secret = "inline"
	cfg.Encryption.Passphrase = "also a passphrase"
	require.Error(t, cfg.Validate())
}

func TestValidate_Argon2Params(t *testing.T) {
	cfg := config.Default()
	cfg.Encryption.Passphrase = "a passphrase"
	cfg.Encryption.Argon2Time = 0
	require.Error(t, cfg.Validate())
}
