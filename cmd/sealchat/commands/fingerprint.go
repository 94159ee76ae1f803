package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/app"
)

// fingerprint: print the fingerprint of the provisioned secret. Only the
// fingerprint ever leaves the process.
func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := app.DeriveKeyMaterial(cfg, passphrase)
			if err != nil {
				return err
			}
			defer km.Destroy()
			fmt.Println(km.Fingerprint)
			return nil
		},
	}
}
