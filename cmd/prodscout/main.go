// Package main provides the entry point for the prodscout CLI.
//
// prodscout analyzes product pages: it scrapes a product URL, asks a
// language model to extract product facts, research competitors and
// compare them, and writes a fact-checked market report.
//
// Usage:
//
//	prodscout analyze <product-url>...
//	prodscout serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
