// Package document converts between YAML text and configuration trees. It
// parses multi-document YAML streams into tree mappings and encodes resolved
// trees as YAML, JSON or TOML.
package document
