// Package rate implements per-(session, action) sliding-window admission.
//
// # Window semantics
//
// A check prunes timestamps older than now-window and admits while the
// remaining count is below the limit. Reserve performs check-then-record as
// one critical section so two concurrent requests from the same session
// cannot both take the last slot.
//
// Two stores exist: an in-process map for the single-instance deployment
// model, and a Redis sorted-set window (score = event time) for deployments
// where several instances serve one session.
//
// # What this package must NOT do
//
//   - Know action budgets or compose user-facing messages (the root package
//     owns policy and wording).
//   - Be imported outside the reportguard module.
package rate
