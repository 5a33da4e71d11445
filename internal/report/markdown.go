package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/database"
	"github.com/nao1215/policyscan/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown, with a
// mermaid pie chart of the collected data categories.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one analysis result.
func (w *MarkdownWriter) Write(res *model.AnalysisResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(res.CompanyName + " Privacy Policy Analysis")
	md.PlainText("")

	rows := [][]string{
		{"Score", scoreLabel(res)},
		{"Risk Level", riskBadge(res.RiskLevel())},
		{"Source", sourceLabel(res.SourceKind)},
		{"Prose By", res.Backend},
		{"Analyzed", res.AnalyzedAt.Format(timeLayout)},
	}
	if res.Website != "" {
		rows = append([][]string{{"Website", "`" + res.Website + "`"}}, rows...)
	}
	if res.PrivacyURL != "" {
		rows = append(rows, []string{"Policy URL", res.PrivacyURL})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, res)

	md.H2("What Is Harmful")
	md.PlainText("")
	md.PlainText(res.HarmfulPoints)
	md.PlainText("")

	md.H2("Worst Data Collected")
	md.PlainText("")
	md.PlainText(res.WorstData)
	md.PlainText("")

	md.H2("Recommendation")
	md.PlainText("")
	md.PlainText(res.Recommendation)
	md.PlainText("")

	md.H2("Concerns")
	md.PlainText("")
	md.BulletList(res.Concerns...)
	md.PlainText("")

	if len(res.Positives) > 0 {
		md.H2("Good Practices")
		md.PlainText("")
		md.BulletList(res.Positives...)
		md.PlainText("")
	}

	if len(res.DataTypes) > 0 {
		w.writeDataTypes(md, res.DataTypes)
	}

	if a := res.Assessment; a != nil {
		md.Details("Assessment", fmt.Sprintf("Sharing: %s. Control: %s. %s", a.Sharing, a.Control, a.Summary))
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, res *model.AnalysisResult) {
	switch {
	case res.SourceKind == model.SourceGeneric:
		md.Note("No privacy policy could be retrieved. This is a generic assessment.")
	case res.RiskLevel() == model.RiskHigh:
		md.Cautionf("High privacy risk: %d%%. Review what this service collects before signing up.", res.RiskPercent())
	case res.RiskLevel() == model.RiskMedium:
		md.Warningf("Moderate privacy risk: %d%%.", res.RiskPercent())
	default:
		md.Tip("No significant privacy red flags detected.")
	}
	md.PlainText("")
}

// writeDataTypes writes the data-type list and a category pie chart.
func (w *MarkdownWriter) writeDataTypes(md *markdown.Markdown, dataTypes []string) {
	md.H2("Data Collected")
	md.PlainText("")
	md.BulletList(dataTypes...)
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Data Categories"),
		piechart.WithShowData(true),
	)
	for _, c := range analyzer.CategorizeDataTypes(dataTypes) {
		chart.LabelAndIntValue(c.Name, uint64(len(c.Labels)))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteComparison outputs the comparison as a table.
func (w *MarkdownWriter) WriteComparison(rows []analyzer.PlatformComparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Platform Comparison")
	md.PlainText("")

	tableRows := make([][]string, len(rows))
	for i, r := range rows {
		name := r.Name
		if !r.Known {
			name += " (generic)"
		}
		tableRows[i] = []string{name, strconv.Itoa(r.Score) + "/100", strconv.Itoa(r.DataCount), r.Sharing}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Safety", "Data Types", "Sharing"},
		Rows:   tableRows,
	})
	md.PlainText("")
	md.PlainText("*Higher safety scores are better.*")

	return len(md.String()), md.Build()
}

// WriteHistory outputs stored analyses as a table.
func (w *MarkdownWriter) WriteHistory(entries []database.HistoryEntry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Analysis History")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No analyses recorded yet.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		website := e.Website
		if website == "" {
			website = "-"
		}
		rows[i] = []string{
			e.Timestamp.Format(timeLayout),
			e.CompanyName,
			website,
			strconv.Itoa(e.RiskScore) + "%",
			string(e.SourceKind),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"When", "Company", "Website", "Risk", "Source"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// WriteStats outputs the dashboard and platform aggregates as tables.
func (w *MarkdownWriter) WriteStats(stats *Stats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Statistics")
	md.PlainText("")

	if d := stats.Dashboard; d != nil {
		md.Table(markdown.TableSet{
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Total Analyses", strconv.Itoa(d.TotalAnalyses)},
				{"Unique Websites", strconv.Itoa(d.UniqueWebsites)},
				{"Average Risk", strconv.FormatFloat(d.AvgRiskScore, 'f', 1, 64) + "%"},
				{"Analyses Today", strconv.Itoa(d.AnalysesToday)},
			},
		})
		md.PlainText("")
	}

	if len(stats.Platforms) > 0 {
		md.H2("By Company")
		md.PlainText("")
		rows := make([][]string, len(stats.Platforms))
		for i, p := range stats.Platforms {
			rows[i] = []string{
				p.Name,
				strconv.Itoa(p.AnalysisCount),
				strconv.FormatFloat(p.AvgRiskScore, 'f', 1, 64) + "%",
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Company", "Analyses", "Avg Risk"},
			Rows:   rows,
		})
	}

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [policyscan](https://github.com/nao1215/policyscan). Heuristic analysis, not legal advice.*")
}

func riskBadge(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return "🔴 HIGH"
	case model.RiskMedium:
		return "🟡 MEDIUM"
	default:
		return "🟢 LOW"
	}
}
