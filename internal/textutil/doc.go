// Package textutil holds the small text helpers shared by the normalizer and
// the enricher: markup stripping, whitespace folding, rune-safe truncation and
// date normalization.
package textutil
