// Package gen renders validated union declarations into Go source.
//
// Generation approach uses text/template + go/format for readable,
// deterministic output.
//
// Each union becomes three files:
//   - a wrapper type shared by both profiles
//   - the checked profile (built by default): tagged storage whose
//     accessors panic on wrong-member access
//   - the raw profile (built under the configured tag): members overlap
//     in one byte array sized and aligned at compile time, with no
//     checks at all
//
// Generic unions cannot size a byte array from a type parameter, so
// their raw profile keeps one field per member and only drops the tag.
package gen
