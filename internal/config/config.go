// Package config loads and validates the TOML configuration shared by the
// serve and chat commands.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Encryption selects how the shared secret is provisioned. Exactly one of
// Secret, SecretFile, or Passphrase must be set when encryption is used:
//
//   - Secret:     an inline high-entropy value (fast one-way hash derivation)
//   - SecretFile: a file holding the high-entropy value
//   - Passphrase: a user passphrase (slow Argon2id derivation)
//   - Keystore:   a directory holding the secret sealed by `sealchat keygen`,
//     unlocked with the --passphrase flag at start time
type Encryption struct {
	Secret     string `toml:"secret"`
	SecretFile string `toml:"secret_file"`
	Passphrase string `toml:"passphrase"`
	Keystore   string `toml:"keystore"`

	// Argon2id cost for the passphrase path.
	Argon2Time      uint32 `toml:"argon2_time"`
	Argon2MemoryKiB uint32 `toml:"argon2_memory_kib"`
	Argon2Threads   uint8  `toml:"argon2_threads"`
}

// Config is the full application configuration.
type Config struct {
	Listen     string     `toml:"listen"`
	DataDir    string     `toml:"data_dir"`
	LogLevel   string     `toml:"log_level"`
	Encryption Encryption `toml:"encryption"`
}

// Default returns the baseline configuration before file and flag overrides.
func Default() Config {
	return Config{
		Listen:   "127.0.0.1:8080",
		DataDir:  "",
		LogLevel: "info",
		Encryption: Encryption{
			Argon2Time:      1,
			Argon2MemoryKiB: 64 * 1024,
			Argon2Threads:   4,
		},
	}
}

// Load reads path over the defaults. A missing path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(raw), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Validate checks invariants that hold for both commands.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address required")
	}
	set := 0
	for _, v := range []string{c.Encryption.Secret, c.Encryption.SecretFile, c.Encryption.Passphrase, c.Encryption.Keystore} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return errors.New("encryption: secret, secret_file, passphrase and keystore are mutually exclusive")
	}
	if c.Encryption.Passphrase != "" {
		if c.Encryption.Argon2Time == 0 || c.Encryption.Argon2MemoryKiB == 0 || c.Encryption.Argon2Threads == 0 {
			return errors.New("encryption: argon2 parameters must be non-zero")
		}
	}
	return nil
}

// SecretProvisioned reports whether any secret source is configured.
func (c *Config) SecretProvisioned() bool {
	e := c.Encryption
	return e.Secret != "" || e.SecretFile != "" || e.Passphrase != "" || e.Keystore != ""
}
