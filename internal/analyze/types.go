package analyze

import (
	"github.com/Restioson/blair-mountain/internal/common"
)

// TypeID uniquely identifies a named type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "example.com/proto/wire"
	Name    string // e.g., "Header"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Class is the copyability classification of a member type. Raw-profile
// storage reuses one byte region for every member, so a member whose
// value carries pointers is invisible to the garbage collector there.
type Class int

const (
	// ClassUnresolved marks a named type the checker could not see into.
	ClassUnresolved Class = iota
	// ClassValue marks plain data: safe to park in overlapping storage.
	ClassValue
	// ClassPointerBearing marks types whose values carry pointers the
	// garbage collector must be able to see.
	ClassPointerBearing
	// ClassGeneric marks types that depend on a type parameter and can
	// only be classified at instantiation.
	ClassGeneric
)

// String returns a human-readable representation of the Class.
func (c Class) String() string {
	switch c {
	case ClassUnresolved:
		return "unresolved"
	case ClassValue:
		return "value"
	case ClassPointerBearing:
		return "pointer-bearing"
	case ClassGeneric:
		return "generic"
	default:
		return common.UnknownStr
	}
}

// rank orders classes for combining: the worst classification of any
// component decides the whole.
func (c Class) rank() int {
	switch c {
	case ClassPointerBearing:
		return 3
	case ClassUnresolved:
		return 2
	case ClassGeneric:
		return 1
	default:
		return 0
	}
}

// Combine returns the worse of two classifications.
func (c Class) Combine(other Class) Class {
	if other.rank() > c.rank() {
		return other
	}

	return c
}

// Report is the classification of one union member.
type Report struct {
	Union  string
	Member string
	Type   string
	Class  Class
	// Reason names the construct that decided the class, e.g. "slice"
	// or "string header". Empty for plain values.
	Reason string
}
