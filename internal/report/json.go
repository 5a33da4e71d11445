package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/database"
	"github.com/nao1215/policyscan/internal/model"
)

// JSONWriter outputs reports as JSON for other tools.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// AnalysisReport wraps a result with fields derived from it, so consumers
// need not recompute the risk level or data categories.
type AnalysisReport struct {
	*model.AnalysisResult

	RiskPercent int                 `json:"riskPercent"`
	RiskLevel   model.RiskLevel     `json:"riskLevel"`
	Categories  []analyzer.Category `json:"categories"`
}

// NewAnalysisReport builds the JSON view of res.
func NewAnalysisReport(res *model.AnalysisResult) *AnalysisReport {
	return &AnalysisReport{
		AnalysisResult: res,
		RiskPercent:    res.RiskPercent(),
		RiskLevel:      res.RiskLevel(),
		Categories:     analyzer.CategorizeDataTypes(res.DataTypes),
	}
}

// Write outputs the result with its derived fields.
func (w *JSONWriter) Write(res *model.AnalysisResult) (int, error) {
	return w.writeJSON(NewAnalysisReport(res))
}

// WriteComparison outputs the comparison rows as an array.
func (w *JSONWriter) WriteComparison(rows []analyzer.PlatformComparison) (int, error) {
	if rows == nil {
		rows = []analyzer.PlatformComparison{}
	}
	return w.writeJSON(rows)
}

// WriteHistory outputs the history entries as an array.
func (w *JSONWriter) WriteHistory(entries []database.HistoryEntry) (int, error) {
	if entries == nil {
		entries = []database.HistoryEntry{}
	}
	return w.writeJSON(entries)
}

// WriteStats outputs the dashboard and platform aggregates.
func (w *JSONWriter) WriteStats(stats *Stats) (int, error) {
	return w.writeJSON(stats)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
