package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"mentorai/tutor/console"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the tutor in the terminal",
	Long: `Start an interactive chat. Messages are sent to the completion endpoint
at AI_CHAT_URL; chats are stored in the configured session store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx, settings)
		if err != nil {
			return err
		}
		defer a.close()

		err = console.New(a.ctrl, a.notices, cmd.OutOrStdout()).Run(ctx, cmd.InOrStdin())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
