package commands

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sealchat/internal/app"
	"sealchat/internal/server"
)

// serve: run the encrypted chat API.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the encrypted chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.NewWire(cfg, passphrase)
			if err != nil {
				return err
			}
			defer w.Close()

			srv, err := server.New(w.KM, w.Chat, logrus.NewEntry(w.Log).WithField("component", "server"))
			if err != nil {
				return err
			}

			w.Log.WithFields(logrus.Fields{
				"listen":      cfg.Listen,
				"fingerprint": w.KM.Fingerprint,
			}).Info("serving encrypted chat")
			return http.ListenAndServe(cfg.Listen, srv.Handler())
		},
	}
}
