// Package config loads the tracker's configuration from an optional YAML
// file and TRACKER_ prefixed environment variables, and validates it.
//
// Secret values may be written as "env:NAME" to read them from another
// environment variable, so a config file can be committed without the
// secrets it refers to.
package config
