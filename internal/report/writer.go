package report

import (
	"fmt"
	"io"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/database"
	"github.com/nao1215/policyscan/internal/model"
)

// Writer renders analysis output in one format.
type Writer interface {
	// Write outputs a single analysis result.
	Write(res *model.AnalysisResult) (int, error)

	// WriteComparison outputs a side-by-side platform comparison.
	WriteComparison(rows []analyzer.PlatformComparison) (int, error)

	// WriteHistory outputs stored analyses, newest first.
	WriteHistory(entries []database.HistoryEntry) (int, error)

	// WriteStats outputs the dashboard and per-platform aggregates.
	WriteStats(stats *Stats) (int, error)
}

// Stats bundles the aggregate views of the result store.
type Stats struct {
	Dashboard *database.Dashboard     `json:"dashboard"`
	Platforms []database.PlatformStat `json:"platforms"`
}

// Format selects a Writer implementation.
type Format string

const (
	// FormatSimple is plain text for the terminal.
	FormatSimple Format = "simple"
	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
	// FormatMarkdown is GitHub-flavored markdown.
	FormatMarkdown Format = "markdown"
)

// NewWriter returns the Writer for format writing to output.
func NewWriter(format Format, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// MultiWriter writes to several Writers, stopping at the first error.
// The CLI uses it to print to the terminal while also writing --output.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Write outputs the result to all Writers.
func (m *MultiWriter) Write(res *model.AnalysisResult) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(res) })
}

// WriteComparison outputs the comparison to all Writers.
func (m *MultiWriter) WriteComparison(rows []analyzer.PlatformComparison) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteComparison(rows) })
}

// WriteHistory outputs the history to all Writers.
func (m *MultiWriter) WriteHistory(entries []database.HistoryEntry) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteHistory(entries) })
}

// WriteStats outputs the stats to all Writers.
func (m *MultiWriter) WriteStats(stats *Stats) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteStats(stats) })
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// scoreLabel describes the score with its scale, e.g. "90/100 risk".
func scoreLabel(res *model.AnalysisResult) string {
	return fmt.Sprintf("%d/100 %s", res.Score, res.Scale)
}

// sourceLabel describes where the analysis came from.
func sourceLabel(kind model.SourceKind) string {
	switch kind {
	case model.SourceLiveScraping:
		return "retrieved from the web"
	case model.SourcePredefined:
		return "built-in platform profile"
	case model.SourceProvidedText:
		return "provided text"
	case model.SourceGeneric:
		return "no policy found (generic)"
	default:
		return string(kind)
	}
}

const timeLayout = "2006-01-02 15:04:05 MST"
