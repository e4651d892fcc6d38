// Package envtree turns prefixed environment variables such as
// APP_server__port=8080 into a nested configuration tree used to override
// values of an already merged configuration.
package envtree
