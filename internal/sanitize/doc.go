// Package sanitize neutralizes spreadsheet-injection payloads in untrusted
// string cells.
//
// # Pattern semantics
//
// The signature table is ordered and first-match-wins: patterns overlap, and
// the neutralizing quote is prepended exactly once. Matching anchors at the
// start of the (trimmed) value; a bare minus sign is flagged only when not
// followed by a digit so legitimate negative numbers survive untouched.
//
// # What this package must NOT do
//
//   - Log, emit events, or mutate anything beyond the returned value.
//     Callers decide how a modification is reported.
//   - Be imported outside the reportguard module.
package sanitize
