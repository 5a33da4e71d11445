package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask a question about a company's privacy practices",
		Long: `Chat answers a plain-language question about a company's privacy
practices. The answer draws on the latest stored analysis of the subject
when there is one, and on built-in profiles otherwise.

With a model backend configured the model answers; without one, or when
it fails, a short rule-based answer is given.

Examples:
  policyscan chat --subject Tinder "How do I delete my data?"
  policyscan chat --subject example.com "Do they sell my data?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runChatCmd,
	}

	cmd.Flags().StringP("subject", "s", "", "Company, platform or domain the question is about")

	return cmd
}

// runChatCmd executes the chat command.
func runChatCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	subject, err := cmd.Flags().GetString("subject")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	s, err := newSession(cmd.Context(), cmd, cfg, sessionOptions{store: true})
	defer s.Close()
	if err != nil {
		return err
	}

	answer, err := s.orchestrator.Chat(cmd.Context(), strings.Join(args, " "), subject)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, answer)
	return nil
}
