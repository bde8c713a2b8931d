// Package emailstore accumulates consenting email submissions with hard
// bounds on growth.
//
// # Capacity semantics
//
// Every backend enforces a record-count cap, and the file backend a
// serialized-size cap as well. A submission over a cap reports StatusDropped,
// which callers surface as success: the endpoint must not become an oracle
// for probing store capacity. Duplicates report StatusDuplicate, also
// surfaced as success. Only an I/O failure reports non-success.
//
// The file backend holds a cross-process exclusive lock around its whole
// load/check/append/persist cycle; the redis and postgres backends rely on
// their stores' own atomic dedupe primitives instead.
package emailstore
