// Package batch provides helpers for tools that act on many items in one call.
//
// This package includes helpers for:
//   - Parsing list parameters passed as JSON arrays or JSON strings
//   - Processing items one by one while tolerating partial failures
//   - Formatting per-item results in a consistent structure
package batch
