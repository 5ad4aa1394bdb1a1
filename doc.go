// Package lexsort sorts arbitrarily large "<integer>. <text>" line files
// via bounded-memory external merge sort.
//
// Lines are sorted lexicographically (byte-ordinal, not locale-aware) on
// the text part, with the integer breaking ties in ascending order.
// Malformed lines are silently dropped; see Sort for the engine entry
// point and Options for the configuration surface.
package lexsort
