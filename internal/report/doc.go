// Package report writes finished analyses for people and tools.
//
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: a Markdown document for sharing
//   - JSONWriter: the analysis as JSON
//
// All writers implement Writer and can be combined with MultiWriter.
package report
