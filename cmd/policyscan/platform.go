package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewPlatformCmd creates the platform command.
func NewPlatformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platform [name]",
		Short: "Analyze a well-known platform from its built-in profile",
		Long: `Platform analyzes a well-known service from a built-in profile instead
of downloading its policy. Profile scores count safety: higher is better.

Unknown names get a generic assessment. More platforms can be added in
the platforms section of .policyscan.

Examples:
  # List the built-in platforms
  policyscan platform --list

  # Analyze one platform
  policyscan platform tinder

  # Compare several platforms side by side
  policyscan platform --compare tinder,facebook,whatsapp`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPlatformCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List known platforms")
	cmd.Flags().StringSlice("compare", nil, "Compare platforms (comma separated)")
	cmd.Flags().Bool("no-save", false, "Do not record the analysis in the database")
	addReportFlags(cmd)

	return cmd
}

// runPlatformCmd executes the platform command.
func runPlatformCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyReportFlags(cmd, cfg)

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	compare, err := cmd.Flags().GetStringSlice("compare")
	if err != nil {
		return err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noSave

	if !list && len(compare) == 0 && len(args) == 0 {
		return fmt.Errorf("specify a platform name, --list or --compare (known: %s)",
			strings.Join(newAnalyzer(cfg.File).PlatformNames(), ", "))
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Listing and comparing never touch the database.
	s, err := newSession(cmd.Context(), cmd, cfg, sessionOptions{store: !list && len(compare) == 0})
	defer s.Close()
	if err != nil {
		return err
	}

	a := s.orchestrator.Analyzer()
	switch {
	case list:
		for _, name := range a.PlatformNames() {
			fmt.Fprintln(s.out, name)
		}
		return nil

	case len(compare) > 0:
		w, closeOutput, err := s.reportWriter()
		if err != nil {
			return err
		}
		defer closeOutput() //nolint:errcheck // report file is closed on exit
		_, err = w.WriteComparison(a.ComparePlatforms(compare))
		return err

	default:
		res, err := s.orchestrator.AnalyzePlatform(cmd.Context(), args[0])
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
}
