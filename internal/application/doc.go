// Package application wires configuration loading, resolution and output.
// It reads the configured parts through a source.Source, resolves them with
// a resolver.Resolver backed by a templating.Engine, and encodes the result,
// keeping the main package focused on CLI parsing and orchestration.
package application
