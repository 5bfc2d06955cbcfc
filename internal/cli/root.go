// Package cli implements the mailfix command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeblew999/plat-mailfix/pkg/config"
	"github.com/joeblew999/plat-mailfix/pkg/log"
)

// NewRootCmd builds the mailfix command tree.
func NewRootCmd(version string) *cobra.Command {
	var (
		logLevel    string
		logEncoding string
	)

	rootCmd := &cobra.Command{
		Use:   "mailfix",
		Short: "Repair and validate HTML email templates",
		Long: `mailfix repairs HTML email templates exported from CMS editors and agency
hand-offs so they render consistently in Outlook, Gmail, webmail and Apple Mail.

It fixes broken structure (unclosed tables, duplicated <head>, mojibake, CMS
residue), enforces header/footer/preheader placeholders, synthesizes Outlook
VML for call-to-action buttons and runs a suite of deliverability checks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.Setup(logLevel, logEncoding)
		},
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.GetLogLevel(), "Log level (debug, info, error, severe) [MAILFIX_LOG_LEVEL]")
	rootCmd.PersistentFlags().StringVar(&logEncoding, "log-encoding", "plain", "Log encoding (plain, json)")

	rootCmd.AddCommand(
		newRepairCmd(),
		newValidateCmd(),
		newButtonsCmd(),
		newStripCmd(),
		newSendCmd(),
		newVersionCmd(version),
	)

	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mailfix version %s\n", version)
		},
	}
}
