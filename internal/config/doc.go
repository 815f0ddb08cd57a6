// Package config provides configuration loading, merging, and validation
// facilities for the remote configuration client.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. JSON config file
//  2. Environment variables
//  3. Command-line flags
//
// The main entry point is [GetStructuredConfig].
package config
