// Package core provides the business logic for file conversions.
//
// The package ties the tabular parser and the spreadsheet package writer
// into a single Convert operation, independent of any transport layer. It
// can be driven by HTTP handlers, a CLI, or tests without modification.
//
// # Conversion flow
//
//  1. The delimiter is taken from the request, or auto-detected from the
//     first line of the input when empty.
//  2. [tabular.ParseFile] builds the grid and string pool.
//  3. [xlsx.WritePackage] writes the archive atomically to the destination.
//  4. The outcome is recorded in the conversion history when a database is
//     configured.
//
// A conversion is strictly sequential and one-shot: it either completes or
// returns the first error encountered. There is no partial-progress
// reporting and no retry.
//
// # Concurrency
//
// Each conversion owns its grid and pool and writes to its own destination
// path, so conversions are safe to run in parallel. [ConversionLimiter]
// bounds how many run at once.
package core
