// Package config provides configuration structures and utilities for prodscout.
// It defines the listen address, language model settings, proxy pool, rate
// limit policy, fetch limits, splitter sizes, history database and logging
// options, together with the YAML file loader and environment overrides.
package config
