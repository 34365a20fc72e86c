// Package common provides shared utilities for MCP tool implementations.
// It covers the app_key argument, argument parsing, conversion of client
// errors into tool results, read-only registration and instrumentation.
package common
