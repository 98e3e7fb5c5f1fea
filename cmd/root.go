package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the msmeetings application
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "msmeetings",
		Short: "Manage Zoom-backed online meeting events in Microsoft 365 calendars",
		Long: `msmeetings creates, updates and deletes online meeting events in
Microsoft 365 calendars through Microsoft Graph. Events can be addressed by
their Graph id or by the Zoom meeting id stored on them.

It can run as:
  - A CLI tool (msmeetings events ...)
  - An MCP (Model Context Protocol) server for AI assistants (msmeetings serve)`,
		SilenceUsage: true,
	}

	opts := &graphOptions{}
	addGraphFlags(cmd, opts)

	cmd.AddCommand(newEventsCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGenerateDocsCmd())
	return cmd
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "msmeetings version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "msmeetings version %s\n", version)
		},
	}
}
