// Package spec parses and validates union spec files.
//
// A spec file names a target package (or leaves that to the manifest),
// imports the packages its member types come from, and declares unions:
//
//	package message
//
//	import "time"
//
//	// Envelope carries one decoded value at a time.
//	pub union Envelope {
//		pub note: string,
//		pub count: uint32,
//		stamp: time.Time,
//	}
//
// Member types are ordinary Go type expressions and every member ends
// with a comma, including the last. Generic unions declare parameters in
// brackets with optional plus-separated bounds, and may constrain them
// further in a trailing where clause:
//
//	union slot[T any, U comparable] where T: fmt.Stringer {
//		value: T,
//		fallback: U,
//	}
//
// Key capabilities:
//   - Hand-rolled scanner and parser with file:line:col positions
//   - Raw capture of embedded Go type expressions, checked via go/parser
//   - Validation of identifier, visibility, and trailing-comma rules
//   - Collision checks over the names the generator will synthesize
package spec
