// Package config loads light-curve run parameters from JSON or YAML files.
package config
