// Package ident synthesizes Go identifiers and file names from the logical
// names declared in a union spec. All derived names used by the generator
// funnel through here so that the same fragments always concatenate to the
// same identifier.
package ident

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Join concatenates name fragments into a single unexported identifier.
// Fragment boundaries become camel humps: Join("get", "note", "mut")
// yields "getNoteMut".
func Join(parts ...string) string {
	return strcase.ToLowerCamel(glue(parts))
}

// JoinExported concatenates name fragments into a single exported
// identifier: JoinExported("new", "envelope", "note") yields
// "NewEnvelopeNote".
func JoinExported(parts ...string) string {
	return strcase.ToCamel(glue(parts))
}

// JoinVisible dispatches to JoinExported or Join based on exported.
func JoinVisible(exported bool, parts ...string) string {
	if exported {
		return JoinExported(parts...)
	}
	return Join(parts...)
}

// File concatenates fragments into a snake_case file stem, without
// extension: File("Envelope", "union", "raw") yields "envelope_union_raw".
func File(parts ...string) string {
	return strcase.ToSnake(glue(parts))
}

func glue(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "_")
}
