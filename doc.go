// Package reportguard is the defensive input layer for a report-generation
// service: sliding-window rate limiting per pseudonymous session, CSV
// injection sanitization for uploaded tabular data, multi-stage email
// validation, and a bounded deduplicated email store, all feeding a
// privacy-preserving audit trail.
//
// The package is a library, not a server. It speaks no network protocol of
// its own; a presentation layer hands it uploads, email submissions, and
// session handles, and acts on the verdicts it returns. Guard methods are
// safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// reportguard is the public surface. It exposes [Guard], [Builder], [Config],
// verdict types, and audit sink types. Window bookkeeping, injection pattern
// matching, the email pipeline, and store backends live under internal/ and
// are never exported.
//
// # What this package must NOT do
//
//   - Interpret the contents of uploaded tables beyond size, shape, and
//     injection patterns. Domain processing belongs to the caller.
//   - Write raw user content (athlete names, email addresses) to the audit
//     trail. Identifiers needed for correlation are recorded as truncated
//     one-way hashes.
//   - Let an internal error escape a public operation. Every operation
//     returns an explicit verdict or error.
package reportguard
