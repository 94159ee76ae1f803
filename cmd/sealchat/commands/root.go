package commands

import (
	"github.com/spf13/cobra"

	"sealchat/internal/config"
)

var (
	cfgPath    string
	passphrase string
	logLevel   string

	cfg config.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:           "sealchat",
		Short:         "Encrypted streaming chat over SSE",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return cfg.Validate()
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (TOML)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase unlocking the local keystore")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level")

	root.AddCommand(serveCmd(), chatCmd(), keygenCmd(), fingerprintCmd())
	return root.Execute()
}
