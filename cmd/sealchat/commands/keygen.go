package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sealchat/internal/crypto"
	"sealchat/internal/store"
	"sealchat/internal/util/memzero"
)

// keygen: create a fresh high-entropy chat secret.
func keygenCmd() *cobra.Command {
	var keystoreDir string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new chat secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				return err
			}
			defer memzero.Zero(secret)

			km, err := crypto.DeriveSecret(secret)
			if err != nil {
				return err
			}
			defer km.Destroy()

			if keystoreDir != "" {
				if passphrase == "" {
					return fmt.Errorf("passphrase required to seal the keystore (-p)")
				}
				if err := os.MkdirAll(keystoreDir, 0o700); err != nil {
					return err
				}
				if err := store.NewKeyStore(keystoreDir).SaveSecret(passphrase, secret); err != nil {
					return err
				}
				fmt.Printf("secret sealed in %s\nfingerprint: %s\n", keystoreDir, km.Fingerprint)
				return nil
			}

			// No keystore: print once, for out-of-band provisioning.
			fmt.Printf("secret: %s\nfingerprint: %s\n", hex.EncodeToString(secret), km.Fingerprint)
			return nil
		},
	}
	cmd.Flags().StringVar(&keystoreDir, "keystore", "", "seal the secret in this directory instead of printing it")
	return cmd
}
