package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewTextCmd creates the text command.
func NewTextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text [file|-]",
		Short: "Analyze privacy policy text you already have",
		Long: `Text analyzes policy text read from a file, or from standard input when
the file is "-" or omitted. Nothing is downloaded.

Examples:
  # Analyze a saved policy
  policyscan text --subject Acme policy.txt

  # Pipe text in
  pbpaste | policyscan text --subject Acme`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTextCmd,
	}

	cmd.Flags().StringP("subject", "s", "", "Company or service the policy belongs to")
	cmd.Flags().Bool("no-save", false, "Do not record the analysis in the database")
	addReportFlags(cmd)

	return cmd
}

// runTextCmd executes the text command.
func runTextCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyReportFlags(cmd, cfg)

	subject, err := cmd.Flags().GetString("subject")
	if err != nil {
		return err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noSave

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	text, err := readPolicyText(cmd, args, cfg.MaxBodySize)
	if err != nil {
		return err
	}

	s, err := newSession(cmd.Context(), cmd, cfg, sessionOptions{store: true})
	defer s.Close()
	if err != nil {
		return err
	}

	res, err := s.orchestrator.AnalyzeText(cmd.Context(), text, subject)
	if err != nil {
		return err
	}

	w, closeOutput, err := s.reportWriter()
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // report file is closed on exit
	_, err = w.Write(res)
	return err
}

// readPolicyText reads at most limit bytes from the named file or stdin.
func readPolicyText(cmd *cobra.Command, args []string, limit int64) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("policy file not found: %s", args[0])
			}
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return "", fmt.Errorf("failed to read policy text: %w", err)
	}
	return string(data), nil
}
