// Package resolver builds a final configuration tree from ordered, possibly
// templated configuration parts.
//
// Each pass parses every part, merges the documents in order under each
// part's key policy and, if an environment prefix was given, merges the
// environment overrides last under the existent-keys policy. If any part
// still contains template syntax, every part is rendered against the merged
// tree and the pass repeats:
//
//	cfg, err := resolver.New().
//		AddPart(defaults, tree.PolicyAny).
//		AddPart(site, tree.PolicyExistent).
//		Resolve("APP_")
//
// The loop has no pass limit unless WithMaxPasses is used, so templates
// that keep producing template syntax never terminate.
package resolver
