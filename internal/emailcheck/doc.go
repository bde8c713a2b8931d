// Package emailcheck rejects invalid, disposable, or non-existent email
// addresses and suggests corrections for common provider typos.
//
// The pipeline is ordered: normalize, format, typo table, disposable
// blocklist, then a DNS liveness probe bounded by a short timeout. A typo
// match is a rejection carrying a suggested address, never a silent
// auto-correction. Liveness is a heuristic: by default any resolvable host
// passes; RequireMX upgrades it to a real mail-exchange lookup.
package emailcheck
