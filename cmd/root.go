package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mentorai/tutor/config"
)

var (
	verbose  bool
	envFile  string
	settings config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "mentorai",
	Short: "AI tutor chat service",
	Long: `MentorAI keeps independent tutoring conversations, persists them, and
answers each message through a hosted language model.

  mentorai serve               # HTTP API and /ai-chat completion endpoint
  mentorai chat                # chat in the terminal
  mentorai sessions list       # list stored chats
  mentorai sessions export     # export chats as json, yaml or md`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			config.LoadEnv(envFile)
		} else {
			config.LoadEnv()
		}
		settings = config.Load()

		level := settings.LogLevel
		if verbose {
			level = "debug"
		}
		config.InitLogger(level)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of .env")
}
