// Package config handles configuration management for dotlink.
// It layers the embedded defaults, the repository's dotlink.toml,
// DOTLINK_ environment variables and command-line flags, in that order.
package config
