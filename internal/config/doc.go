// Package config provides configuration structures and utilities for
// aptscout: defaults and validation for the command-line settings, the
// .aptscout YAML file with per-host site profiles, and .env loading.
package config
