// Package database stores the history of product analyses in SQLite.
//
// Two tables are kept:
//   - analyses: every finished analysis as JSON, with its outcome columns
//     for listing without decoding the JSON
//   - pages: the latest scrape of each product URL (title, content type
//     and content hash), so changes of a page between runs are visible
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
