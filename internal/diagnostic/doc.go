// Package diagnostic provides structured errors, warnings, and notes
// produced while translating union specs into generated code.
//
// Key capabilities:
//   - Spec parse and validation errors with file:line:col positions
//   - Copyability warnings for raw-profile unions
//   - Strict mode promotion of warnings to errors
//   - Merge of per-union results into one run report
package diagnostic
