// Package config loads the settings of a layercfg run from multiple sources
// (a YAML manifest, LAYERCFG_* environment variables, CLI flags) with
// precedence: CLI flags > Environment variables > YAML manifest > Defaults.
// The manifest lists the configuration parts to resolve and the key policy
// each part is merged with.
package config
