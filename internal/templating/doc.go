// Package templating renders template expressions embedded in configuration
// text. It wraps text/template with a strict missing-key mode and a small
// filter set: toJson, escapeQuotes, indent, until, default, env and
// requiredEnv.
//
// Control actions can be placed on YAML comment lines so that unrendered text
// still parses:
//
//	hosts:
//	# {{- range $i := until 3 }}
//	  - node-{{ $i }}
//	# {{- end }}
package templating
