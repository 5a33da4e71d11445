package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/database"
	"github.com/nao1215/policyscan/internal/model"
)

// SimpleWriter outputs plain text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds categories and the assessment summary.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one analysis result.
func (w *SimpleWriter) Write(res *model.AnalysisResult) (int, error) {
	var sb strings.Builder

	writeRule(&sb, "=")
	sb.WriteString("                      PRIVACY POLICY ANALYSIS\n")
	writeRule(&sb, "=")
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Company:    %s\n", res.CompanyName)
	if res.Website != "" {
		fmt.Fprintf(&sb, "Website:    %s\n", res.Website)
	}
	if res.PrivacyURL != "" {
		fmt.Fprintf(&sb, "Policy:     %s\n", res.PrivacyURL)
	}
	fmt.Fprintf(&sb, "Score:      %s\n", scoreLabel(res))
	fmt.Fprintf(&sb, "Risk level: %s\n", res.RiskLevel())
	fmt.Fprintf(&sb, "Source:     %s\n", sourceLabel(res.SourceKind))
	fmt.Fprintf(&sb, "Prose by:   %s\n", res.Backend)
	fmt.Fprintf(&sb, "Analyzed:   %s\n\n", res.AnalyzedAt.Format(timeLayout))

	w.writeSection(&sb, "WHAT IS HARMFUL", res.HarmfulPoints)
	w.writeSection(&sb, "WORST DATA COLLECTED", res.WorstData)
	w.writeSection(&sb, "RECOMMENDATION", res.Recommendation)

	w.writeList(&sb, "CONCERNS", "[!]", res.Concerns)
	if len(res.Positives) > 0 {
		w.writeList(&sb, "GOOD PRACTICES", "[+]", res.Positives)
	}
	if len(res.DataTypes) > 0 {
		w.writeList(&sb, "DATA COLLECTED", "[*]", res.DataTypes)
	}

	if w.verbose {
		w.writeDetails(&sb, res)
	}

	writeRule(&sb, "=")
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title, body string) {
	writeRule(sb, "-")
	sb.WriteString(title + "\n")
	writeRule(sb, "-")
	sb.WriteString("  " + body + "\n\n")
}

func (w *SimpleWriter) writeList(sb *strings.Builder, title, marker string, items []string) {
	writeRule(sb, "-")
	sb.WriteString(title + "\n")
	writeRule(sb, "-")
	for _, item := range items {
		fmt.Fprintf(sb, "  %s %s\n", marker, item)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDetails(sb *strings.Builder, res *model.AnalysisResult) {
	if cats := analyzer.CategorizeDataTypes(res.DataTypes); len(cats) > 0 {
		writeRule(sb, "-")
		sb.WriteString("DATA CATEGORIES\n")
		writeRule(sb, "-")
		for _, c := range cats {
			fmt.Fprintf(sb, "  %-11s %d (%s)\n", c.Name+":", len(c.Labels), strings.Join(c.Labels, ", "))
		}
		sb.WriteString("\n")
	}
	if a := res.Assessment; a != nil {
		writeRule(sb, "-")
		sb.WriteString("ASSESSMENT\n")
		writeRule(sb, "-")
		fmt.Fprintf(sb, "  Overall risk: %d%% (%s)\n", a.Overall, a.Level)
		fmt.Fprintf(sb, "  Sharing:      %s\n", a.Sharing)
		fmt.Fprintf(sb, "  Control:      %s\n", a.Control)
		fmt.Fprintf(sb, "  %s\n\n", a.Summary)
	}
	fmt.Fprintf(sb, "Analysis ID: %s\n", res.ID)
}

// WriteComparison outputs platforms as an aligned table.
func (w *SimpleWriter) WriteComparison(rows []analyzer.PlatformComparison) (int, error) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLATFORM\tSAFETY\tDATA TYPES\tSHARING\tKNOWN")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d/100\t%d\t%s\t%t\n", r.Name, r.Score, r.DataCount, r.Sharing, r.Known)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return w.output.Write([]byte(sb.String()))
}

// WriteHistory outputs stored analyses as an aligned table.
func (w *SimpleWriter) WriteHistory(entries []database.HistoryEntry) (int, error) {
	if len(entries) == 0 {
		return io.WriteString(w.output, "No analyses recorded yet.\n")
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tCOMPANY\tWEBSITE\tRISK\tSCORE\tSOURCE")
	for _, e := range entries {
		website := e.Website
		if website == "" {
			website = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%d %s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"), e.CompanyName, website,
			e.RiskScore, e.Score, e.Scale, e.SourceKind)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return w.output.Write([]byte(sb.String()))
}

// WriteStats outputs the dashboard followed by per-platform averages.
func (w *SimpleWriter) WriteStats(stats *Stats) (int, error) {
	var sb strings.Builder

	if d := stats.Dashboard; d != nil {
		writeRule(&sb, "-")
		sb.WriteString("DASHBOARD\n")
		writeRule(&sb, "-")
		fmt.Fprintf(&sb, "  Total analyses:  %d\n", d.TotalAnalyses)
		fmt.Fprintf(&sb, "  Unique websites: %d\n", d.UniqueWebsites)
		fmt.Fprintf(&sb, "  Average risk:    %.1f%%\n", d.AvgRiskScore)
		fmt.Fprintf(&sb, "  Today:           %d\n", d.AnalysesToday)
		if len(d.TopCompanies) > 0 {
			sb.WriteString("  Most analyzed:\n")
			for _, c := range d.TopCompanies {
				fmt.Fprintf(&sb, "    %s (%d)\n", c.Name, c.Count)
			}
		}
		sb.WriteString("\n")
	}

	if len(stats.Platforms) > 0 {
		tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COMPANY\tANALYSES\tAVG RISK\tLAST ANALYZED")
		for _, p := range stats.Platforms {
			fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%s\n",
				p.Name, p.AnalysisCount, p.AvgRiskScore, p.LastAnalyzed.Local().Format("2006-01-02 15:04"))
		}
		if err := tw.Flush(); err != nil {
			return 0, err
		}
	}

	return w.output.Write([]byte(sb.String()))
}

func writeRule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, 70))
	sb.WriteString("\n")
}
