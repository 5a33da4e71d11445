package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for policyscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policyscan",
		Short: "Privacy policy risk analysis",
		Long: `policyscan finds a website's privacy policy, scores how risky it is,
lists the data it collects and explains the concerns in plain language.

Scores come from keyword heuristics and are not legal advice. Set
POLICYSCAN_MODEL_ENDPOINT and POLICYSCAN_MODEL_NAME (or a model section
in .policyscan) to let an OpenAI-compatible model write the explanations.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("metrics-file", "",
		"Write Prometheus metrics to this file on exit (node exporter textfile format)")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .policyscan in current or home directory)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory for the result database (default: XDG data directory)")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewPlatformCmd())
	cmd.AddCommand(NewTextCmd())
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
