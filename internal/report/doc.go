// Package report renders analysis results, platform comparisons and
// stored history for people and tools.
//
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: JSON with derived risk level and data categories
//   - MarkdownWriter: Markdown tables with a mermaid pie chart
//
// NewWriter picks one by Format; MultiWriter fans out to several.
package report
