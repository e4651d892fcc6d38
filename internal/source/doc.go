// Package source loads configuration part files from disk and tracks their
// content so watch mode can tell when a resolved configuration is stale.
package source
