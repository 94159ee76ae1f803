package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sealchat/internal/app"
	"sealchat/internal/client"
	"sealchat/internal/services/rekey"
)

// stdinPrompter asks for a new shared secret on the terminal. The secret is
// read from stdin and never echoed back or logged.
type stdinPrompter struct{}

func (stdinPrompter) PromptSecret(ctx context.Context, reason string) ([]byte, error) {
	fmt.Fprintln(os.Stderr, reason)
	fmt.Fprint(os.Stderr, "new secret: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// chat <message>: send one encrypted prompt and stream the decrypted reply.
func chatCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message and stream the encrypted reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := app.DeriveKeyMaterial(cfg, passphrase)
			if err != nil {
				return err
			}
			defer km.Destroy()

			handler := rekey.New(stdinPrompter{}, nil, nil)
			c := client.New(serverURL, handler)

			meta, err := c.Chat(cmd.Context(), &km, args[0], func(chunk []byte) error {
				_, err := os.Stdout.Write(chunk)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("\n[message %s]\n", meta.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "chat server base URL")
	return cmd
}
