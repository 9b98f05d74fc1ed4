// Package reconcile turns loosely-structured LLM payloads into validated,
// evidence-linked bullets and clusters over a fixed universe of consultation
// records.
//
// The package never returns errors for malformed model output: wrong-typed
// values read as absent, unknown record IDs are filtered out, and missing
// evidence or membership is repaired through successively weaker fallback
// tiers (lexical token-overlap matching, stance buckets, an arbitrary sample
// of the universe). The last tier can attach members with no semantic
// connection to a cluster's label; that coarse result is a known quality
// limitation accepted in exchange for the guarantee that a cluster over a
// non-empty universe always has at least one member.
//
// All functions are pure with respect to their inputs and deterministic:
// the same payload and universe always produce the same output.
package reconcile
