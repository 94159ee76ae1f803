package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"sealchat/internal/config"
	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/services/chat"
	"sealchat/internal/services/generate"
	"sealchat/internal/store"
	"sealchat/internal/util/memzero"
)

// ErrNoSecret means no secret source is configured.
var ErrNoSecret = errors.New("no encryption secret provisioned")

// Wire bundles the stores and services built from config.
type Wire struct {
	Cfg         config.Config
	Log         *logrus.Logger
	KM          domain.KeyMaterial
	Transcripts *store.TranscriptStore
	Chat        *chat.Service
}

// NewWire constructs the dependency graph from cfg. localPassphrase unlocks
// the keystore when that secret source is configured.
func NewWire(cfg config.Config, localPassphrase string) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	km, err := DeriveKeyMaterial(cfg, localPassphrase)
	if err != nil {
		return nil, err
	}

	w := &Wire{Cfg: cfg, Log: log, KM: km}
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, err
		}
		ts, err := store.OpenTranscripts(filepath.Join(cfg.DataDir, "transcripts.db"))
		if err != nil {
			return nil, err
		}
		w.Transcripts = ts
	}

	var transcripts domain.TranscriptStore
	if w.Transcripts != nil {
		transcripts = w.Transcripts
	}
	w.Chat = chat.New(&generate.Echo{}, transcripts, logrus.NewEntry(log).WithField("component", "chat"))
	return w, nil
}

// Close releases the wiring: the transcript database is closed and the key
// material wiped.
func (w *Wire) Close() error {
	w.KM.Destroy()
	if w.Transcripts != nil {
		return w.Transcripts.Close()
	}
	return nil
}

// DeriveKeyMaterial resolves the configured secret source and derives the
// session key. Each call performs a fresh derivation; passphrase cost is paid
// once per process, not per message.
func DeriveKeyMaterial(cfg config.Config, localPassphrase string) (domain.KeyMaterial, error) {
	e := cfg.Encryption
	switch {
	case e.Keystore != "":
		ks := store.NewKeyStore(e.Keystore)
		secret, err := ks.LoadSecret(localPassphrase)
		if err != nil {
			return domain.KeyMaterial{}, fmt.Errorf("unlock keystore: %w", err)
		}
		km, err := crypto.DeriveSecret(secret)
		memzero.Zero(secret)
		return km, err

	case e.SecretFile != "":
		raw, err := os.ReadFile(e.SecretFile)
		if err != nil {
			return domain.KeyMaterial{}, fmt.Errorf("read secret file: %w", err)
		}
		secret := bytes.TrimSpace(raw)
		km, err := crypto.DeriveSecret(secret)
		memzero.Zero(raw)
		return km, err

	case e.Secret != "":
		return crypto.DeriveSecret([]byte(e.Secret))

	case e.Passphrase != "":
		return crypto.DerivePassphrase(e.Passphrase, crypto.Argon2Params{
			Time:      e.Argon2Time,
			MemoryKiB: e.Argon2MemoryKiB,
			Threads:   e.Argon2Threads,
		})

	default:
		return domain.KeyMaterial{}, ErrNoSecret
	}
}
