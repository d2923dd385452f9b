// Package report writes indexes and load runs in the supported output formats.
//
// This package contains writers for different output formats:
//   - JSONWriter: index.json for the viewer and run records for tooling
//   - MarkdownWriter: a browsable catalogue and load run reports
//   - SimpleWriter: plain text summaries for the terminal
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
