package cmd

import (
	"github.com/bz888/promptpad/internal/config"
	"github.com/spf13/cobra"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "promptpad",
	Short:         "Terminal chat and text-completion front-ends for a GPT-2 style backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, &loaded)
		cfg = loaded
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Bool("dev", false, "Development mode (shows the debug console)")
	flags.String("log-path", "", "Directory to write the log file to")
	flags.String("url", config.DefaultURL, "Backend base URL")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(serveCmd)
}

// applyFlags lets explicitly set flags win over .env and the environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dev") {
		c.Dev, _ = flags.GetBool("dev")
	}
	if flags.Changed("log-path") {
		c.LogPath, _ = flags.GetString("log-path")
	}
	if flags.Changed("url") {
		c.URL, _ = flags.GetString("url")
	}
	if flags.Changed("addr") {
		c.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("ollama-host") {
		c.OllamaHost, _ = flags.GetString("ollama-host")
	}
	if flags.Changed("model") {
		c.Model, _ = flags.GetString("model")
	}
}
