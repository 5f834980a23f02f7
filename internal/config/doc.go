// Package config provides the configuration of hotwalletscan: defaults,
// validation, the YAML configuration file with per-entity profiles, the
// API key environment variable and XDG directories.
package config
