// Package analyze classifies member types for the copy lint.
//
// Raw-profile unions park every member in one reused byte region, and
// that region is opaque to the garbage collector. A member whose value
// carries pointers (string, slice, map, pointer, interface, func,
// channel) can therefore be collected out from under a live union, so
// such members warn at translation time.
//
// Classification is syntactic by default. With a Resolver, named member
// types are loaded through golang.org/x/tools/go/packages and walked as
// go/types structures, so wire.Header classifies by what its fields
// actually hold.
//
// Key types:
//   - Class: value / pointer-bearing / unresolved / generic
//   - Report: per-member classification with the deciding reason
//   - Resolver: go/packages loader keyed by import path
package analyze
