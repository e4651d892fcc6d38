// Package tree models configuration documents as a closed set of node types
// (Scalar, Sequence, Mapping) and implements the policy-governed recursive
// merge used to layer configuration parts on top of each other.
package tree
