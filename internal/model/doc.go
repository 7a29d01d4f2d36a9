// Package model defines the core data structures shared by the prodscout
// packages.
//
// This package contains the following main types:
//   - Analysis: The state of one product analysis as it moves through the stages
//   - Document: A bounded, overlapping slice of sanitized page text
//   - ScrapedContent: Classified page content together with its metadata
//   - ProgressEvent: A single progress notification streamed to clients
//
// The scraper, agents, pipeline, server and history store all exchange these
// types, so they live here to keep the other packages free of import cycles.
// Every type serializes to JSON for the HTTP API and the history database.
package model
