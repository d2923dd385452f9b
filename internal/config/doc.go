// Package config provides configuration structures and utilities for pdscload.
// It defines where data is read from, which target layout is written, and
// the optional .pdscload YAML file that supplies defaults and per-collection
// settings.
package config
