package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "plog",
		Short:         "Claim, verify, and share ownership of external blogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.toml", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "./data", "path to data directory")

	cmd.AddCommand(newLoginCommand(&opts))
	cmd.AddCommand(newLogoutCommand(&opts))
	cmd.AddCommand(newWhoamiCommand(&opts))
	cmd.AddCommand(newBlogsCommand(&opts))
	cmd.AddCommand(newCollabCommand(&opts))
	cmd.AddCommand(newServeCommand(&opts))
	return cmd
}
