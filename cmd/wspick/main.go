package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "wspick [hostname]",
		Short: "Browse and download remote files over a WebSocket session",
		Long: `wspick connects to a session server over one WebSocket, asks it to open
a session on a remote host, and lets you browse that host's files and
download them.

Without a subcommand the interactive browser starts.`,
		Args:               cobra.MaximumNArgs(1),
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE:               a.runBrowse,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Configuration file path (default ~/.config/wspick/config.yaml)")
	flags.StringVar(&a.endpoint, "endpoint", "", "Session server URL, overrides the config")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&a.logFile, "log-file", "", "Log file path, overrides the config")
	rootCmd.Flags().StringVarP(&a.location, "location", "l", "", "Initial remote directory")

	rootCmd.AddCommand(
		newBrowseCmd(a),
		newLsCmd(a),
		newGetCmd(a),
		newDemoCmd(a),
	)
	return rootCmd
}
