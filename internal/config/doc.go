// Package config loads, validates, and normalizes inkcast configuration.
//
// Configuration comes from a TOML file (~/.config/inkcast/config.toml or
// ./inkcast.toml), with the [llm] section overridable through LLM_* environment
// variables so CI jobs can run without a config file. All path values are
// expanded to absolute paths during load.
package config
