// Package cmd implements the command-line interface for the dynkv chunked
// key-value store. It provides a hierarchical command structure for opening
// an owner's property database and operating on its entries.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, push, delete, etc.)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dynkv -help for a list of all commands.
package cmd
