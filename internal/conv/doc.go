// Package conv provides checked integer conversions for values read from
// untrusted blobs (counts, lengths, dimensionality).
//
// For conversions that are provably safe by construction, use plain casts.
package conv
