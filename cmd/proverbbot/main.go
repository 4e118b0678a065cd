// Command proverbbot runs the Yoruba proverb Telegram bot and its
// database maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "proverbbot: %v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "proverbbot",
		Short:         "Telegram bot serving Yoruba proverbs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $CONFIG_PATH or "+defaultConfigPath+")")

	root.AddCommand(
		newRunCommand(&configFile),
		newMigrateCommand(&configFile),
		newSeedCommand(&configFile),
		newVersionCommand(),
	)
	return root
}
